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

// Package transform maps calibrated temperatures onto the 16-bit
// intensity range and writes them out as grayscale rasters.
package transform

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const maxIntensity = math.MaxUint16

// Config holds the normalization for one run. It is not modified after
// NewConfig returns and may be shared between goroutines.
type Config struct {
	Distance float64
	// Coeffs are the offset and scale of the affine mapping.
	Coeffs    [2]float64
	OutputDir string
	// AtomicWrite makes outputs appear only once fully written.
	AtomicWrite bool
}

// NewConfig returns a Config mapping min to 0 and max to 65535.
func NewConfig(min, max, distance float64, outputDir string) (*Config, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, errors.Errorf("invalid temperature range %v to %v", min, max)
	}
	if max <= min {
		return nil, errors.Errorf("max temperature (%v) must be greater than min temperature (%v)", max, min)
	}
	scale := maxIntensity / (max - min)
	return &Config{
		Distance:  distance,
		Coeffs:    [2]float64{-min * scale, scale},
		OutputDir: outputDir,
	}, nil
}

// Transform maps a temperature to an intensity. Values outside the
// configured range saturate; the result is truncated toward zero.
func (c *Config) Transform(v float64) uint16 {
	x := c.Coeffs[0] + c.Coeffs[1]*v
	switch {
	case math.IsNaN(x):
		return 0
	case x <= 0:
		return 0
	case x >= maxIntensity:
		return maxIntensity
	}
	return uint16(x)
}

// OutputStem returns the output path for filename without an extension:
// the output directory joined with the file's base name.
func (c *Config) OutputStem(filename string) string {
	base := filepath.Base(filename)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		base = stem
	}
	return filepath.Join(c.OutputDir, base)
}
