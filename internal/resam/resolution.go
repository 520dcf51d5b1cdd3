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
	"fmt"
	"math"

	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/tables"
)

// How the Gaussian bandwidth of a column is estimated
type ResolutionMode int

const (
	ResolutionGeodesic  ResolutionMode = iota  // distance between the first two sorted rows
	ResolutionQuadratic                        // heuristic pixel size across the scan
)

var resolutionModeNames = []string{"geodesic", "quadratic"}

func (m ResolutionMode) String() string {
	if m<0 || int(m)>=len(resolutionModeNames) { return fmt.Sprintf("ResolutionMode(%d)", int(m)) }
	return resolutionModeNames[m]
}

// Parses a resolution mode name
func ParseResolutionMode(s string) (ResolutionMode, error) {
	for i, n:=range(resolutionModeNames) {
		if n==s { return ResolutionMode(i), nil }
	}
	return ResolutionGeodesic, fmt.Errorf("unknown resolution mode '%s'", s)
}

func (m ResolutionMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ResolutionMode) UnmarshalText(b []byte) (err error) {
	*m, err=ParseResolutionMode(string(b))
	return err
}

// Approximate along-track pixel size in km for column x, growing 
// quadratically from nadir to the swath edge
func QuadraticResolution(x int) float64 {
	const c=(tables.Width-1)/2.0
	u:=(float64(x)-c)/c
	return 0.742 + 0.858*u*u
}

// Computes the bandwidth in km for every column of a sorted swath
func ColumnResolution(slat, slon *grid.Grid[float32], mode ResolutionMode) []float64 {
	res:=make([]float64, slat.Width)
	for x:=range(res) {
		if mode==ResolutionGeodesic && slat.Height>1 {
			d:=GeoDist(float64(slat.At(0,x)), float64(slon.At(0,x)), float64(slat.At(1,x)), float64(slon.At(1,x)))
			if d>0 && !math.IsInf(d, 0) { // NaN fails d>0
				res[x]=d
				continue
			}
		}
		res[x]=QuadraticResolution(x)
	}
	return res
}
