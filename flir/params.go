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

import "math"

// Params are the calibration and ambient conditions FLIR cameras record
// alongside the raw sensor data. Temperatures are in °C and humidity is
// a fraction, as reported by "exiftool -n".
type Params struct {
	PlanckR1 float64 `json:"PlanckR1"`
	PlanckR2 float64 `json:"PlanckR2"`
	PlanckB  float64 `json:"PlanckB"`
	PlanckF  float64 `json:"PlanckF"`
	PlanckO  float64 `json:"PlanckO"`

	Emissivity             float64 `json:"Emissivity"`
	ReflectedTemperature   float64 `json:"ReflectedApparentTemperature"`
	AtmosphericTemperature float64 `json:"AtmosphericTemperature"`
	RelativeHumidity       float64 `json:"RelativeHumidity"`
	IRWindowTemperature    float64 `json:"IRWindowTemperature"`
	IRWindowTransmission   float64 `json:"IRWindowTransmission"`

	Alpha1 float64 `json:"AtmosphericTransAlpha1"`
	Alpha2 float64 `json:"AtmosphericTransAlpha2"`
	Beta1  float64 `json:"AtmosphericTransBeta1"`
	Beta2  float64 `json:"AtmosphericTransBeta2"`
	X      float64 `json:"AtmosphericTransX"`

	RawWidth  int    `json:"RawThermalImageWidth"`
	RawHeight int    `json:"RawThermalImageHeight"`
	RawType   string `json:"RawThermalImageType"`
}

const kelvin = 273.15

// TemperatureTransform returns the raw to °C conversion for a subject
// the given number of metres away. The atmosphere between camera and
// subject and the camera's IR window are compensated for.
func (p *Params) TemperatureTransform(distance float64) func(raw float64) float64 {
	emissivity := p.Emissivity
	if emissivity <= 0 {
		emissivity = 1
	}
	windowTrans := p.IRWindowTransmission
	if windowTrans <= 0 {
		windowTrans = 1
	}
	tau := p.transmission(distance)

	rawRefl := p.radiance(p.ReflectedTemperature)
	rawAtm := p.radiance(p.AtmosphericTemperature)
	rawWind := p.radiance(p.IRWindowTemperature)

	// Attenuation of the signal on the way from the subject, first through
	// the atmosphere and then the window, followed by a second atmospheric
	// layer of the same transmission.
	attn := emissivity * tau * windowTrans * tau
	offset := (1-emissivity)/emissivity*rawRefl +
		(1-tau)/emissivity/tau*rawAtm +
		(1-windowTrans)/emissivity/tau/windowTrans*rawWind +
		(1-tau)/emissivity/tau/windowTrans/tau*rawAtm

	return func(raw float64) float64 {
		return p.temperature(raw/attn - offset)
	}
}

// transmission is the fraction of IR passing through distance metres of air.
func (p *Params) transmission(distance float64) float64 {
	t := p.AtmosphericTemperature
	h2o := p.RelativeHumidity * math.Exp(1.5587+0.06939*t-0.00027816*t*t+0.00000068455*t*t*t)
	d := math.Sqrt(math.Max(distance, 0) / 2)
	sh := math.Sqrt(h2o)
	return p.X*math.Exp(-d*(p.Alpha1+p.Beta1*sh)) +
		(1-p.X)*math.Exp(-d*(p.Alpha2+p.Beta2*sh))
}

// radiance is the raw sensor value of a black body at t °C.
func (p *Params) radiance(t float64) float64 {
	return p.PlanckR1/(p.PlanckR2*(math.Exp(p.PlanckB/(t+kelvin))-p.PlanckF)) - p.PlanckO
}

// temperature is the inverse of radiance.
func (p *Params) temperature(raw float64) float64 {
	return p.PlanckB/math.Log(p.PlanckR1/(p.PlanckR2*(raw+p.PlanckO))+p.PlanckF) - kelvin
}
