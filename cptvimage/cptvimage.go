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

// Package cptvimage reads single frames of Cacophony CPTV recordings as
// raw radiometric images.
package cptvimage

import (
	"bufio"
	"io"
	"os"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/thermal-transform/thermal"
)

const kelvin = 273.15

// TLinear converts Lepton TLinear readings, which are in hundredths of a
// kelvin, to °C. The camera has already compensated for the scene so the
// subject distance is not used.
type TLinear struct{}

func (TLinear) TemperatureTransform(float64) func(raw float64) float64 {
	return func(raw float64) float64 {
		return raw/100 - kelvin
	}
}

// Load returns frame number index (counting from 0) of the recording.
func Load(filename string, index int) (*thermal.Matrix, error) {
	if index < 0 {
		return nil, errors.Errorf("invalid frame index %d", index)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := cptv.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CPTV header")
	}
	frame := cptvframe.NewFrame(reader)
	for i := 0; i <= index; i++ {
		if err := reader.ReadFrame(frame); err != nil {
			if err == io.EOF {
				return nil, errors.Errorf("recording has only %d frames", i)
			}
			return nil, errors.Wrapf(err, "failed to read frame %d", i)
		}
	}

	rows := len(frame.Pix)
	if rows == 0 {
		return nil, errors.New("recording has no resolution")
	}
	grid := thermal.NewGrid(rows, len(frame.Pix[0]))
	for y, row := range frame.Pix {
		for x, v := range row {
			grid.Set(y, x, float64(v))
		}
	}
	return &thermal.Matrix{Raw: grid, Settings: TLinear{}}, nil
}
