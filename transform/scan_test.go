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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

type scanned struct {
	row, col int
	value    uint16
}

func drain(s *Scanner) []scanned {
	var out []scanned
	for s.Next() {
		row, col, v := s.Pixel()
		out = append(out, scanned{row, col, v})
	}
	return out
}

func identityConfig(t *testing.T) *Config {
	conf, err := NewConfig(0, 65535, 0, "")
	require.NoError(t, err)
	return conf
}

func TestScanRowMajor(t *testing.T) {
	grid := thermal.NewGrid(3, 4)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			grid.Set(row, col, float64(row*100+col))
		}
	}

	s := NewScanner(grid, identityConfig(t), nil)
	height, width := s.Dims()
	assert.Equal(t, 3, height)
	assert.Equal(t, 4, width)

	got := drain(s)
	require.Len(t, got, 12)

	seen := make(map[[2]int]bool)
	for i, p := range got {
		assert.Equal(t, i/4, p.row)
		assert.Equal(t, i%4, p.col)
		assert.Equal(t, uint16(p.row*100+p.col), p.value)
		seen[[2]int{p.row, p.col}] = true
	}
	assert.Len(t, seen, 12)

	assert.False(t, s.Next())
}

func TestScanAppliesCorrection(t *testing.T) {
	grid, err := thermal.GridFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	double := func(v float64) float64 { return v * 2 }
	got := drain(NewScanner(grid, identityConfig(t), double))
	assert.Equal(t, []scanned{{0, 0, 2}, {0, 1, 4}, {1, 0, 6}, {1, 1, 8}}, got)
}

func TestScanRepeatable(t *testing.T) {
	grid, err := thermal.GridFromRows([][]float64{{5, 6, 7}})
	require.NoError(t, err)
	conf := identityConfig(t)

	first := drain(NewScanner(grid, conf, nil))
	second := drain(NewScanner(grid, conf, nil))
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestScanEmptyGrid(t *testing.T) {
	assert.Empty(t, drain(NewScanner(thermal.NewGrid(0, 5), identityConfig(t), nil)))
	assert.Empty(t, drain(NewScanner(thermal.NewGrid(5, 0), identityConfig(t), nil)))
}

func TestScanSingleColumn(t *testing.T) {
	grid, err := thermal.GridFromRows([][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	got := drain(NewScanner(grid, identityConfig(t), nil))
	assert.Equal(t, []scanned{{0, 0, 1}, {1, 0, 2}, {2, 0, 3}}, got)
}
