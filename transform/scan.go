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

import "github.com/TheCacophonyProject/thermal-transform/thermal"

// Scanner walks a grid in row-major order yielding mapped intensities.
// A Scanner is single use; create another to scan the grid again.
type Scanner struct {
	grid       *thermal.Grid
	conf       *Config
	correct    func(float64) float64
	rows, cols int
	row, col   int
	started    bool
}

// NewScanner returns a Scanner over grid. correct is applied to each
// value before normalization; nil means no correction.
func NewScanner(grid *thermal.Grid, conf *Config, correct func(float64) float64) *Scanner {
	rows, cols := grid.Dims()
	return &Scanner{
		grid:    grid,
		conf:    conf,
		correct: correct,
		rows:    rows,
		cols:    cols,
	}
}

// Dims returns the height and width of the scanned grid.
func (s *Scanner) Dims() (height, width int) {
	return s.rows, s.cols
}

// Next advances to the next pixel, returning false when the grid is exhausted.
func (s *Scanner) Next() bool {
	if s.rows == 0 || s.cols == 0 {
		return false
	}
	if !s.started {
		s.started = true
		return true
	}
	if s.row >= s.rows {
		return false
	}
	s.col++
	if s.col == s.cols {
		s.col = 0
		s.row++
	}
	return s.row < s.rows
}

// Pixel returns the current position and its mapped intensity.
func (s *Scanner) Pixel() (row, col int, value uint16) {
	v := s.grid.At(s.row, s.col)
	if s.correct != nil {
		v = s.correct(v)
	}
	return s.row, s.col, s.conf.Transform(v)
}
