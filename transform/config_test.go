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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	conf, err := NewConfig(-10, 40, 2.5, "/out")
	require.NoError(t, err)
	assert.InDelta(t, 1310.7, conf.Coeffs[1], 1e-9)
	assert.InDelta(t, 13107.0, conf.Coeffs[0], 1e-9)
	assert.Equal(t, 2.5, conf.Distance)
	assert.Equal(t, "/out", conf.OutputDir)
	assert.False(t, conf.AtomicWrite)
}

func TestNewConfigInvalidRange(t *testing.T) {
	_, err := NewConfig(10, 10, 1, "")
	assert.Error(t, err)
	_, err = NewConfig(20, 10, 1, "")
	assert.Error(t, err)
	_, err = NewConfig(math.NaN(), 10, 1, "")
	assert.Error(t, err)
	_, err = NewConfig(0, math.Inf(1), 1, "")
	assert.Error(t, err)
}

func TestTransformEndpoints(t *testing.T) {
	for _, r := range [][2]float64{{0, 150}, {-20, 120}, {-40.5, 0.25}, {0, 65535}} {
		conf, err := NewConfig(r[0], r[1], 0, "")
		require.NoError(t, err)
		assert.InDelta(t, 0, conf.Transform(r[0]), 1, "%v", r)
		assert.InDelta(t, 65535, conf.Transform(r[1]), 1, "%v", r)
	}
}

func TestTransformClamps(t *testing.T) {
	conf, err := NewConfig(0, 100, 0, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(0), conf.Transform(-0.001))
	assert.Equal(t, uint16(0), conf.Transform(-1e9))
	assert.Equal(t, uint16(0), conf.Transform(math.Inf(-1)))
	assert.Equal(t, uint16(65535), conf.Transform(100.001))
	assert.Equal(t, uint16(65535), conf.Transform(1e9))
	assert.Equal(t, uint16(65535), conf.Transform(math.Inf(1)))
}

func TestTransformNaN(t *testing.T) {
	conf, err := NewConfig(0, 100, 0, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(0), conf.Transform(math.NaN()))
}

func TestTransformTruncates(t *testing.T) {
	// With an identity mapping the fractional part is simply dropped.
	conf, err := NewConfig(0, 65535, 0, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(0), conf.Transform(0.999))
	assert.Equal(t, uint16(1), conf.Transform(1.5))
	assert.Equal(t, uint16(1234), conf.Transform(1234.9))
	assert.Equal(t, uint16(65534), conf.Transform(65534.9))
}

func TestTransformMonotonic(t *testing.T) {
	conf, err := NewConfig(-20, 120, 0, "")
	require.NoError(t, err)
	prev := conf.Transform(-50)
	for v := -50.0; v <= 150; v += 0.037 {
		cur := conf.Transform(v)
		require.True(t, cur >= prev, "transform(%v) = %d < %d", v, cur, prev)
		prev = cur
	}
}

func TestOutputStem(t *testing.T) {
	conf := &Config{OutputDir: "/out"}
	assert.Equal(t, "/out/scan001", conf.OutputStem("scan001.jpg"))
	assert.Equal(t, "/out/scan001", conf.OutputStem("/data/in/scan001.jpg"))
	assert.Equal(t, "/out/archive.tar", conf.OutputStem("archive.tar.gz"))
	assert.Equal(t, "/out/noext", conf.OutputStem("noext"))
	assert.Equal(t, "/out/.hidden", conf.OutputStem(".hidden"))
}
