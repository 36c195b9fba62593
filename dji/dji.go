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

// Package dji reads DJI R-JPEG radiometric images using the measure
// tool from the DJI Thermal SDK.
package dji

import (
	"encoding/binary"
	"image/jpeg"
	"io/ioutil"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

// Tool runs the dji_irp binary at Path.
type Tool struct {
	Path string
}

func NewTool(path string) *Tool {
	if path == "" {
		path = "dji_irp"
	}
	return &Tool{Path: path}
}

// Open checks that filename is a readable JPEG and returns an image
// whose temperatures are measured when first asked for.
func Open(filename string, tool *Tool) (*thermal.Embedded, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	conf, err := jpeg.DecodeConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "invalid JPEG")
	}
	return &thermal.Embedded{Reader: &rjpeg{
		filename: filename,
		width:    conf.Width,
		height:   conf.Height,
		tool:     tool,
	}}, nil
}

type rjpeg struct {
	filename      string
	width, height int
	tool          *Tool
}

// Temperatures measures every pixel of the image in °C.
func (im *rjpeg) Temperatures() (*thermal.Grid, error) {
	dir, err := ioutil.TempDir("", "dji-measure")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "measure.raw")
	if err := im.tool.measure(im.filename, out); err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(out)
	if err != nil {
		return nil, err
	}
	return decodeFloats(data, im.width, im.height)
}

func (t *Tool) measure(src, dst string) error {
	cmd := exec.Command(t.Path, "-s", src, "-a", "measure", "-o", dst, "--measurefmt", "float32")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s failed: %s", t.Path, strings.TrimSpace(string(output)))
	}
	return nil
}

func decodeFloats(data []byte, width, height int) (*thermal.Grid, error) {
	if len(data) != width*height*4 {
		return nil, errors.Errorf("measured %d bytes, expected %dx%d float32 samples", len(data), width, height)
	}
	grid := thermal.NewGrid(height, width)
	for i := 0; i < width*height; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		grid.Set(i/width, i%width, float64(v))
	}
	return grid, nil
}
