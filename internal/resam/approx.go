// Copyright (C) 2020 Markus L. Noga
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
// along with this program.  If not, see <https://www.gnu.org/licenses/>.



package resam

import (
	"math"
)

// Physically valid value range of a field, inclusive
type Range struct {
	Min float32 `json:"min" yaml:"min"`
	Max float32 `json:"max" yaml:"max"`
}

// Brightness temperature range in Kelvin, also used for reflectances
var TemperatureRange=Range{Min: 0, Max: 350}

// Returns true if v lies in the range. NaN is never valid
func (r Range) Valid(v float32) bool {
	return v>=r.Min && v<=r.Max
}

// Approximates the value at target coordinates (tlat, tlon) from three 
// neighboring samples vals[0..2] at (lats[i], lons[i]). Invalid samples are 
// ignored. Returns sentinel if no sample is valid, the single valid sample 
// unchanged, or else the average weighted by exp(-d²/res²), where d is the 
// great-circle distance to the target in km.
func GeoApprox(vals, lats, lons []float32, tlat, tlon float32, res float64, r Range, sentinel float32) float32 {
	numValid, lastValid:=0, 0
	for i:=0; i<3; i++ {
		if r.Valid(vals[i]) { numValid++; lastValid=i }
	}
	switch numValid {
	case 0: return sentinel
	case 1: return vals[lastValid]
	}

	sqres:=res*res
	num, denom:=0.0, 0.0
	nearest, nearestD:=-1, math.Inf(1)
	for i:=0; i<3; i++ {
		if !r.Valid(vals[i]) { continue }
		d:=GeoDist(float64(tlat), float64(tlon), float64(lats[i]), float64(lons[i]))
		w:=math.Exp(-d*d/sqres)
		num  +=float64(vals[i])*w
		denom+=w
		if d<nearestD { nearest, nearestD=i, d }
	}
	if !(denom>0) {  // all weights underflowed
		if nearest<0 { return vals[lastValid] }
		return vals[nearest]
	}
	return float32(num/denom)
}
