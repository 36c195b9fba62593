// thermal-transform - convert radiometric thermal images to calibrated rasters
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package metadata copies EXIF and XMP blocks from source images onto
// generated rasters.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Step identifies which metadata block was being copied.
type Step string

const (
	StepEXIF Step = "exif"
	StepXMP  Step = "xmp"
)

// Propagator copies metadata from one image file to another.
type Propagator interface {
	Propagate(src, dst string) error
}

// ToolError is returned when the external metadata tool fails.
type ToolError struct {
	Step   Step
	Source string
	Dest   string
	Err    error
	// Output is anything the tool wrote to stderr.
	Output string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("failed to copy %s from %s to %s: %v", e.Step, e.Source, e.Dest, e.Err)
	if e.Output != "" {
		msg += " (" + e.Output + ")"
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Exiv2 copies metadata using the exiv2 command line tool, piping an
// extract of the source into an insert on the destination.
type Exiv2 struct {
	Path string
}

func NewExiv2(path string) *Exiv2 {
	if path == "" {
		path = "exiv2"
	}
	return &Exiv2{Path: path}
}

// Propagate copies the EXIF block then the XMP block. The XMP step is
// not attempted if the EXIF step fails.
func (e *Exiv2) Propagate(src, dst string) error {
	if err := e.pipe(StepEXIF, "-ea-", "-ia-", src, dst); err != nil {
		return err
	}
	return e.pipe(StepXMP, "-eX-", "-iX-", src, dst)
}

// pipe runs "exiv2 <extract> src | exiv2 <insert> dst". As with a shell
// pipeline the result is the exit status of the insert.
func (e *Exiv2) pipe(step Step, extractFlag, insertFlag, src, dst string) error {
	toolErr := func(err error, stderr *bytes.Buffer) error {
		return &ToolError{
			Step:   step,
			Source: src,
			Dest:   dst,
			Err:    err,
			Output: strings.TrimSpace(stderr.String()),
		}
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return toolErr(err, new(bytes.Buffer))
	}

	extractStderr := new(bytes.Buffer)
	extract := exec.Command(e.Path, extractFlag, src)
	extract.Stdout = pw
	extract.Stderr = extractStderr

	insertStderr := new(bytes.Buffer)
	insert := exec.Command(e.Path, insertFlag, dst)
	insert.Stdin = pr
	insert.Stderr = insertStderr

	if err := extract.Start(); err != nil {
		pr.Close()
		pw.Close()
		return toolErr(err, extractStderr)
	}
	pw.Close()

	if err := insert.Start(); err != nil {
		pr.Close()
		extract.Wait()
		return toolErr(err, insertStderr)
	}
	pr.Close()

	insertErr := insert.Wait()
	extractErr := extract.Wait()
	if insertErr != nil {
		if extractErr != nil && extractStderr.Len() > 0 {
			insertStderr.WriteString("\n" + extractStderr.String())
		}
		return toolErr(insertErr, insertStderr)
	}
	return nil
}
