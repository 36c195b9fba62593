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

package flir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testParams() *Params {
	return &Params{
		PlanckR1:               21106.77,
		PlanckR2:               0.012545258,
		PlanckB:                1501,
		PlanckF:                1,
		PlanckO:                -7340,
		Emissivity:             1,
		ReflectedTemperature:   20,
		AtmosphericTemperature: 20,
		RelativeHumidity:       0.5,
		IRWindowTemperature:    20,
		IRWindowTransmission:   1,
		Alpha1:                 0.006569,
		Alpha2:                 0.01262,
		Beta1:                  -0.002276,
		Beta2:                  -0.00667,
		X:                      1.9,
	}
}

func TestRadianceRoundTrip(t *testing.T) {
	p := testParams()
	for _, temp := range []float64{-20, 0, 21.5, 37, 80, 150} {
		assert.InDelta(t, temp, p.temperature(p.radiance(temp)), 1e-6)
	}
}

func TestTransformIdealConditions(t *testing.T) {
	// A perfect emitter at zero distance needs no compensation.
	p := testParams()
	transform := p.TemperatureTransform(0)
	for _, temp := range []float64{-10, 15, 36.6, 100} {
		assert.InDelta(t, temp, transform(p.radiance(temp)), 1e-6)
	}
}

func TestTransmission(t *testing.T) {
	p := testParams()
	assert.InDelta(t, 1, p.transmission(0), 1e-12)
	assert.Less(t, p.transmission(50), 1.0)
	assert.Less(t, p.transmission(100), p.transmission(50))
	assert.InDelta(t, 1, p.transmission(-5), 1e-12)
}

func TestDistanceCompensation(t *testing.T) {
	// A subject warmer than the air appears cooler through more air, so
	// the corrected temperature rises with distance.
	p := testParams()
	p.Emissivity = 0.95
	raw := p.radiance(45)

	near := p.TemperatureTransform(1)(raw)
	far := p.TemperatureTransform(100)(raw)
	assert.Greater(t, far, near)
	assert.False(t, math.IsNaN(far))
}

func TestEmissivityCompensation(t *testing.T) {
	p := testParams()
	raw := p.radiance(45)
	ideal := p.TemperatureTransform(0)(raw)

	p.Emissivity = 0.9
	assert.Greater(t, p.TemperatureTransform(0)(raw), ideal)
}

func TestDefaultsForMissingValues(t *testing.T) {
	p := testParams()
	p.Emissivity = 0
	p.IRWindowTransmission = 0
	raw := p.radiance(30)
	assert.InDelta(t, 30, p.TemperatureTransform(0)(raw), 1e-6)
}
