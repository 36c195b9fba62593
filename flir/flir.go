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

// Package flir decodes FLIR radiometric JPEGs. The raw sensor data and
// calibration are extracted with exiftool.
package flir

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/png"
	"math/bits"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

var paramTags = []string{
	"-PlanckR1", "-PlanckR2", "-PlanckB", "-PlanckF", "-PlanckO",
	"-Emissivity", "-ReflectedApparentTemperature",
	"-AtmosphericTemperature", "-RelativeHumidity",
	"-IRWindowTemperature", "-IRWindowTransmission",
	"-AtmosphericTransAlpha1", "-AtmosphericTransAlpha2",
	"-AtmosphericTransBeta1", "-AtmosphericTransBeta2", "-AtmosphericTransX",
	"-RawThermalImageWidth", "-RawThermalImageHeight", "-RawThermalImageType",
}

// Exiftool runs the exiftool binary at Path.
type Exiftool struct {
	Path string
}

func NewExiftool(path string) *Exiftool {
	if path == "" {
		path = "exiftool"
	}
	return &Exiftool{Path: path}
}

// Params reads the camera calibration from filename.
func (e *Exiftool) Params(filename string) (*Params, error) {
	args := append([]string{"-j", "-n"}, paramTags...)
	out, err := e.run(append(args, filename)...)
	if err != nil {
		return nil, err
	}
	var params []Params
	if err := json.Unmarshal(out, &params); err != nil {
		return nil, errors.Wrap(err, "invalid exiftool output")
	}
	if len(params) != 1 {
		return nil, errors.Errorf("exiftool returned %d records", len(params))
	}
	p := &params[0]
	if p.PlanckR1 == 0 || p.PlanckB == 0 {
		return nil, errors.New("no FLIR calibration found")
	}
	return p, nil
}

// RawThermalImage returns the embedded raw sensor image blob.
func (e *Exiftool) RawThermalImage(filename string) ([]byte, error) {
	out, err := e.run("-b", "-RawThermalImage", filename)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no raw thermal image found")
	}
	return out, nil
}

func (e *Exiftool) run(args ...string) ([]byte, error) {
	cmd := exec.Command(e.Path, args...)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s failed: %s", e.Path, msg)
		}
		return nil, errors.Wrapf(err, "%s failed", e.Path)
	}
	return out, nil
}

// Load decodes filename into raw sensor values and their calibration.
func Load(filename string, tool *Exiftool) (*thermal.Matrix, error) {
	params, err := tool.Params(filename)
	if err != nil {
		return nil, err
	}
	blob, err := tool.RawThermalImage(filename)
	if err != nil {
		return nil, err
	}
	raw, err := decodeRaw(blob, params)
	if err != nil {
		return nil, err
	}
	return &thermal.Matrix{Raw: raw, Settings: params}, nil
}

// decodeRaw handles the three ways cameras embed the sensor data: a
// 16-bit PNG with byte swapped samples, a TIFF, or bare little-endian words.
func decodeRaw(blob []byte, params *Params) (*thermal.Grid, error) {
	var (
		img     image.Image
		err     error
		swapped bool
	)
	switch strings.ToUpper(params.RawType) {
	case "PNG":
		img, err = png.Decode(bytes.NewReader(blob))
		swapped = true
	case "TIFF":
		img, err = tiff.Decode(bytes.NewReader(blob))
	default:
		return decodeWords(blob, params.RawWidth, params.RawHeight)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s raw image", params.RawType)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, errors.Errorf("unexpected raw image type %T", img)
	}

	b := gray.Bounds()
	grid := thermal.NewGrid(b.Dy(), b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := gray.Gray16At(x, y).Y
			if swapped {
				v = bits.ReverseBytes16(v)
			}
			grid.Set(y-b.Min.Y, x-b.Min.X, float64(v))
		}
	}
	return grid, nil
}

func decodeWords(blob []byte, width, height int) (*thermal.Grid, error) {
	if width <= 0 || height <= 0 || len(blob) != width*height*2 {
		return nil, errors.Errorf("raw image is %d bytes, expected %dx%d 16-bit samples", len(blob), width, height)
	}
	grid := thermal.NewGrid(height, width)
	for i := 0; i < width*height; i++ {
		grid.Set(i/width, i%width, float64(binary.LittleEndian.Uint16(blob[i*2:])))
	}
	return grid, nil
}
