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

package thermal

import (
	"fmt"
)

// Grid is a dense row-major matrix of float64 values.
type Grid struct {
	rows   int
	cols   int
	values []float64
}

// NewGrid returns a zeroed grid with the given dimensions.
func NewGrid(rows, cols int) *Grid {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("invalid grid dimensions %dx%d", rows, cols))
	}
	return &Grid{
		rows:   rows,
		cols:   cols,
		values: make([]float64, rows*cols),
	}
}

// GridFromRows copies a slice of rows into a new Grid. All rows must
// have the same length.
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	cols := len(rows[0])
	g := NewGrid(len(rows), cols)
	for y, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", y, len(row), cols)
		}
		copy(g.values[y*cols:], row)
	}
	return g, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) {
	return g.rows, g.cols
}

func (g *Grid) At(row, col int) float64 {
	return g.values[g.index(row, col)]
}

func (g *Grid) Set(row, col int, v float64) {
	g.values[g.index(row, col)] = v
}

func (g *Grid) index(row, col int) int {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		panic(fmt.Sprintf("index (%d, %d) out of range for %dx%d grid", row, col, g.rows, g.cols))
	}
	return row*g.cols + col
}
