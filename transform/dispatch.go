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

package transform

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/thermal-transform/output"
	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

const (
	ExtTIFF = ".tif"
	ExtPNG  = ".png"
)

type encodeFunc func(px output.Pixels, width, height int, w io.Writer) error

// TransformImageTIFF writes in as a 16-bit grayscale TIFF in the output
// directory and returns the path written.
func TransformImageTIFF(in *thermal.Input, conf *Config) (string, error) {
	return transformImage(in, conf, ExtTIFF, output.EncodeTIFF)
}

// TransformImagePNG writes in as a 16-bit grayscale PNG in the output
// directory and returns the path written.
func TransformImagePNG(in *thermal.Input, conf *Config) (string, error) {
	return transformImage(in, conf, ExtPNG, output.EncodePNG)
}

// TransformImage writes in using the named format, "tiff" or "png".
func TransformImage(in *thermal.Input, conf *Config, format string) (string, error) {
	switch format {
	case output.FormatTIFF:
		return TransformImageTIFF(in, conf)
	case output.FormatPNG:
		return TransformImagePNG(in, conf)
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

// OutputPath returns the path TransformImage writes filename to.
func OutputPath(filename string, conf *Config, format string) (string, error) {
	switch format {
	case output.FormatTIFF:
		return conf.OutputStem(filename) + ExtTIFF, nil
	case output.FormatPNG:
		return conf.OutputStem(filename) + ExtPNG, nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func transformImage(in *thermal.Input, conf *Config, ext string, encode encodeFunc) (string, error) {
	scanner, err := scannerFor(in, conf)
	if err != nil {
		return "", err
	}
	height, width := scanner.Dims()

	path := conf.OutputStem(in.Filename) + ext
	f, err := output.NewFile(path, conf.AtomicWrite)
	if err != nil {
		return "", errors.Wrap(err, "failed to create output file")
	}
	if err := encode(scanner, width, height, f); err != nil {
		f.Abort()
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

func scannerFor(in *thermal.Input, conf *Config) (*Scanner, error) {
	switch img := in.Image.(type) {
	case *thermal.Matrix:
		if img == nil || img.Raw == nil || img.Settings == nil {
			return nil, &thermal.DecodeError{Path: in.Filename, Err: errors.New("incomplete raw image")}
		}
		return NewScanner(img.Raw, conf, img.Settings.TemperatureTransform(conf.Distance)), nil
	case *thermal.Embedded:
		if img == nil || img.Reader == nil {
			return nil, &thermal.DecodeError{Path: in.Filename, Err: errors.New("no temperature reader")}
		}
		temps, err := img.Temperatures()
		if err != nil {
			return nil, &thermal.DecodeError{Path: in.Filename, Err: err}
		}
		if temps == nil {
			return nil, &thermal.DecodeError{Path: in.Filename, Err: errors.New("no temperatures")}
		}
		return NewScanner(temps, conf, nil), nil
	}
	return nil, &thermal.DecodeError{
		Path: in.Filename,
		Err:  fmt.Errorf("unsupported image type %T", in.Image),
	}
}
