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

package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/TheCacophonyProject/thermal-transform/decode"
	"github.com/TheCacophonyProject/thermal-transform/loglimiter"
	"github.com/TheCacophonyProject/thermal-transform/metadata"
	"github.com/TheCacophonyProject/thermal-transform/thermal"
	"github.com/TheCacophonyProject/thermal-transform/transform"
)

const (
	stageDecode   = "decode"
	stageEncode   = "encode"
	stageMetadata = "metadata"

	minLogInterval = time.Minute
)

// stageError records which step of a conversion failed.
type stageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *stageError) Unwrap() error {
	return e.Err
}

type decodeFunc func(filename string, opts decode.Options) (*thermal.Input, error)

// processor converts one file at a time. It holds no per-file state and
// may be shared between workers.
type processor struct {
	conf     *transform.Config
	format   string
	opts     decode.Options
	decode   decodeFunc
	metadata metadata.Propagator
	limiter  *loglimiter.LogLimiter
}

func newProcessor(conf *Config) (*processor, error) {
	tconf, err := transform.NewConfig(conf.MinTemp, conf.MaxTemp, conf.Distance, conf.OutputDir)
	if err != nil {
		return nil, err
	}
	tconf.AtomicWrite = conf.AtomicWrite

	p := &processor{
		conf:   tconf,
		format: conf.Format,
		opts: decode.Options{
			ExiftoolPath: conf.ExiftoolPath,
			DJIIRPPath:   conf.DJIIRPPath,
			CPTVFrame:    conf.CPTVFrame,
		},
		decode:  decode.Open,
		limiter: loglimiter.New(minLogInterval),
	}
	if conf.CopyMetadata {
		p.metadata = metadata.NewExiv2(conf.Exiv2Path)
	}
	return p, nil
}

// processFile converts filename and returns the path written. When only
// the metadata copy fails the converted file is kept and its path is
// returned along with the error.
func (p *processor) processFile(filename string) (string, error) {
	in, err := p.decode(filename, p.opts)
	if err != nil {
		return "", &stageError{Stage: stageDecode, Path: filename, Err: err}
	}

	outPath, err := transform.TransformImage(in, p.conf, p.format)
	if err != nil {
		var decErr *thermal.DecodeError
		if errors.As(err, &decErr) {
			return "", &stageError{Stage: stageDecode, Path: filename, Err: err}
		}
		return "", &stageError{Stage: stageEncode, Path: filename, Err: err}
	}

	if p.metadata != nil && hasMetadata(filename) {
		if err := p.metadata.Propagate(filename, outPath); err != nil {
			return outPath, &stageError{Stage: stageMetadata, Path: filename, Err: err}
		}
	}
	return outPath, nil
}

// report logs a failed conversion. Repeated tool failures, such as a
// missing exiv2, are only logged once per interval.
func (p *processor) report(err error) {
	key := err.Error()
	var toolErr *metadata.ToolError
	if errors.As(err, &toolErr) {
		key = fmt.Sprintf("%s:%s:%v", stageMetadata, toolErr.Step, toolErr.Err)
	}
	p.limiter.Print(key, err.Error())
}

// splitCollisions drops files whose output path is already claimed by an
// earlier file in the list, returning an error for each file dropped.
func (p *processor) splitCollisions(files []string) ([]string, []error) {
	claimed := make(map[string]string)
	var keep []string
	var errs []error
	for _, filename := range files {
		outPath, err := transform.OutputPath(filename, p.conf, p.format)
		if err != nil {
			// processFile reports the bad format.
			keep = append(keep, filename)
			continue
		}
		if first, ok := claimed[outPath]; ok {
			errs = append(errs, &stageError{
				Stage: stageEncode,
				Path:  filename,
				Err:   fmt.Errorf("%s is already the output for %s", outPath, first),
			})
			continue
		}
		claimed[outPath] = filename
		keep = append(keep, filename)
	}
	return keep, errs
}

// upToDate reports whether filename has already been converted, that is
// its output exists and isn't older than it.
func (p *processor) upToDate(filename string) bool {
	outPath, err := transform.OutputPath(filename, p.conf, p.format)
	if err != nil {
		return false
	}
	in, err := os.Stat(filename)
	if err != nil {
		return false
	}
	out, err := os.Stat(outPath)
	if err != nil {
		return false
	}
	return !out.ModTime().Before(in.ModTime())
}

// hasMetadata reports whether filename can carry EXIF or XMP blocks.
func hasMetadata(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) != ".cptv"
}

// collectInputs expands directories into the supported files they
// contain. Directories aren't searched recursively. Files named
// explicitly are always included.
func collectInputs(args []string) ([]string, error) {
	var files []string
	for _, name := range args {
		info, err := os.Stat(name)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, name)
			continue
		}
		entries, err := ioutil.ReadDir(name)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			if entry.Mode().IsRegular() && decode.Supported(entry.Name()) {
				found = append(found, filepath.Join(name, entry.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
