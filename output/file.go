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

package output

import (
	"bufio"
	"io/ioutil"
	"os"
	"path/filepath"
)

// TempSuffix is appended to the names of files that are still being written.
const TempSuffix = ".temp"

// File is a buffered output file. When created as atomic it is written
// under a temporary name and only renamed into place by a successful Close.
type File struct {
	name   string
	f      *os.File
	w      *bufio.Writer
	atomic bool
	done   bool
}

// NewFile creates filename for writing. Atomic files get a temporary
// name of their own so concurrent writers never share one.
func NewFile(filename string, atomic bool) (*File, error) {
	var f *os.File
	var err error
	if atomic {
		f, err = createTemp(filename)
	} else {
		f, err = os.Create(filename)
	}
	if err != nil {
		return nil, err
	}
	return &File{
		name:   filename,
		f:      f,
		w:      bufio.NewWriterSize(f, 1024*1024),
		atomic: atomic,
	}, nil
}

func createTemp(filename string) (*os.File, error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	f, err := ioutil.TempFile(dir, base+".*"+TempSuffix)
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}

func (bf *File) Write(p []byte) (int, error) {
	return bf.w.Write(p)
}

// Name returns the final name of the file.
func (bf *File) Name() string {
	return bf.name
}

// Close flushes the file and, for atomic files, moves it to its final name.
func (bf *File) Close() error {
	if bf.done {
		return nil
	}
	if err := bf.w.Flush(); err != nil {
		bf.Abort()
		return err
	}
	bf.done = true
	if err := bf.f.Close(); err != nil {
		if bf.atomic {
			os.Remove(bf.f.Name())
		}
		return err
	}
	if bf.atomic {
		return os.Rename(bf.f.Name(), bf.name)
	}
	return nil
}

// Abort closes the file without publishing it. An atomic file's
// temporary is removed; a non-atomic file is left as written so far.
func (bf *File) Abort() error {
	if bf.done {
		return nil
	}
	bf.done = true
	err := bf.f.Close()
	if bf.atomic {
		if rmErr := os.Remove(bf.f.Name()); err == nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	}
	return err
}

// DeleteTempFiles removes files left behind by interrupted atomic writes.
func DeleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*"+TempSuffix))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}
