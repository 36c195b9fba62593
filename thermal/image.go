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

// Package thermal describes decoded radiometric images. An Image is
// either a Matrix of raw sensor values with a calibration, or an
// Embedded image that yields already corrected temperatures.
package thermal

import "fmt"

// Settings converts raw sensor readings into temperatures in °C.
type Settings interface {
	TemperatureTransform(distance float64) func(raw float64) float64
}

// SettingsFunc adapts a plain function to the Settings interface.
type SettingsFunc func(distance float64) func(raw float64) float64

func (f SettingsFunc) TemperatureTransform(distance float64) func(raw float64) float64 {
	return f(distance)
}

// TemperatureReader extracts the temperature matrix of an embedded
// radiometric image.
type TemperatureReader interface {
	Temperatures() (*Grid, error)
}

// TemperatureFunc adapts a plain function to the TemperatureReader interface.
type TemperatureFunc func() (*Grid, error)

func (f TemperatureFunc) Temperatures() (*Grid, error) {
	return f()
}

// Image is implemented by *Matrix and *Embedded only.
type Image interface {
	isImage()
}

// Matrix holds raw sensor values that still need the distance
// dependent temperature transform applied.
type Matrix struct {
	Raw      *Grid
	Settings Settings
}

func (*Matrix) isImage() {}

// Embedded wraps a source that produces calibrated temperatures itself.
type Embedded struct {
	Reader TemperatureReader
}

func (*Embedded) isImage() {}

// Temperatures returns the calibrated temperature matrix.
func (e *Embedded) Temperatures() (*Grid, error) {
	return e.Reader.Temperatures()
}

// Input is a decoded image along with the file it came from.
type Input struct {
	Filename string
	Image    Image
}

// DecodeError reports a failure to decode a source image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
