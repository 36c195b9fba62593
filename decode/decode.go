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

// Package decode recognises supported radiometric files and decodes them
// into thermal images.
package decode

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/TheCacophonyProject/thermal-transform/cptvimage"
	"github.com/TheCacophonyProject/thermal-transform/dji"
	"github.com/TheCacophonyProject/thermal-transform/flir"
	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

// Options configures the external tools and recording frame used by the
// decoders.
type Options struct {
	ExiftoolPath string
	DJIIRPPath   string
	CPTVFrame    int
}

var extensions = map[string]bool{
	".cptv": true,
	".jpg":  true,
	".jpeg": true,
}

// Supported reports whether filename has an extension Open understands.
func Supported(filename string) bool {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

// Open decodes filename. All failures are returned as *thermal.DecodeError.
func Open(filename string, opts Options) (*thermal.Input, error) {
	img, err := open(filename, opts)
	if err != nil {
		return nil, &thermal.DecodeError{Path: filename, Err: err}
	}
	return &thermal.Input{Filename: filename, Image: img}, nil
}

func open(filename string, opts Options) (thermal.Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extensions[ext] {
		return nil, errors.Errorf("unsupported file type %q", ext)
	}
	if ext == ".cptv" {
		m, err := cptvimage.Load(filename, opts.CPTVFrame)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	brand, err := cameraMake(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(strings.ToUpper(brand), "FLIR"):
		m, err := flir.Load(filename, flir.NewExiftool(opts.ExiftoolPath))
		if err != nil {
			return nil, err
		}
		return m, nil
	case strings.ToUpper(brand) == "DJI":
		e, err := dji.Open(filename, dji.NewTool(opts.DJIIRPPath))
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, errors.Errorf("unsupported camera make %q", brand)
}

func cameraMake(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return "", errors.Wrap(err, "no EXIF data")
	}
	tag, err := x.Get(exif.Make)
	if err != nil {
		return "", errors.Wrap(err, "no camera make")
	}
	brand, err := tag.StringVal()
	if err != nil {
		return "", errors.Wrap(err, "invalid camera make")
	}
	return strings.TrimRight(brand, "\x00 "), nil
}
