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

// Package output encodes 16-bit grayscale rasters and writes them to disk.
package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/tiff"
)

const (
	FormatTIFF = "tiff"
	FormatPNG  = "png"
)

// Pixels is a stream of mapped samples in row-major order.
type Pixels interface {
	Next() bool
	Pixel() (row, col int, value uint16)
}

// EncodingError is returned when a raster could not be produced, either
// because the pixel stream didn't match the declared dimensions or because
// the destination writer failed.
type EncodingError struct {
	Format string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s encoding failed: %v", e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// EncodeTIFF writes a single strip, uncompressed, 16 bits per sample
// grayscale TIFF. The byte order is recorded in the TIFF header.
func EncodeTIFF(px Pixels, width, height int, w io.Writer) error {
	img, err := gather(px, width, height)
	if err != nil {
		return &EncodingError{Format: FormatTIFF, Err: err}
	}
	if err := tiff.Encode(w, img, nil); err != nil {
		return &EncodingError{Format: FormatTIFF, Err: err}
	}
	return nil
}

// EncodePNG writes a grayscale PNG with a bit depth of 16. Samples are
// stored big-endian as PNG requires.
func EncodePNG(px Pixels, width, height int, w io.Writer) error {
	img, err := gather(px, width, height)
	if err != nil {
		return &EncodingError{Format: FormatPNG, Err: err}
	}
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return &EncodingError{Format: FormatPNG, Err: err}
	}
	return nil
}

// gather drains px into a Gray16 image, checking that it yields every
// pixel exactly once in row-major order.
func gather(px Pixels, width, height int) (*image.Gray16, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	total := width * height
	img := image.NewGray16(image.Rect(0, 0, width, height))
	n := 0
	for px.Next() {
		row, col, v := px.Pixel()
		if row < 0 || row >= height || col < 0 || col >= width {
			return nil, fmt.Errorf("pixel (%d, %d) outside %dx%d raster", row, col, width, height)
		}
		if n >= total {
			return nil, fmt.Errorf("pixel stream longer than %d samples", total)
		}
		if row*width+col != n {
			return nil, fmt.Errorf("pixel (%d, %d) out of scan order", row, col)
		}
		img.SetGray16(col, row, color.Gray16{Y: v})
		n++
	}
	if n != total {
		return nil, fmt.Errorf("pixel stream ended after %d of %d samples", n, total)
	}
	return img, nil
}
