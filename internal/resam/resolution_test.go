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
	"testing"

	"github.com/mlnoga/viirsresam/internal/grid"
)

func TestQuadraticResolution(t *testing.T) {
	if got:=QuadraticResolution(0); math.Abs(got-1.6)>1e-9 {
		t.Errorf("edge=%v; want 1.6", got)
	}
	if a, b:=QuadraticResolution(1599), QuadraticResolution(1600); a!=b || a>0.7421 {
		t.Errorf("center=%v, %v; want equal and close to 0.742", a, b)
	}
	if a, b:=QuadraticResolution(10), QuadraticResolution(3189); math.Abs(a-b)>1e-12 {
		t.Errorf("not symmetric: %v vs %v", a, b)
	}
}

func TestColumnResolution(t *testing.T) {
	slat:=grid.New[float32](3, 2)
	slon:=grid.New[float32](3, 2)
	slat.Set(0, 0, 10); slat.Set(1, 0, 10.01)
	slat.Set(0, 1, 10); slat.Set(1, 1, 10)
	slat.Set(0, 2, nan)
	res:=ColumnResolution(slat, slon, ResolutionGeodesic)
	if want:=GeoDist(10, 0, float64(float32(10.01)), 0); math.Abs(res[0]-want)>1e-9 {
		t.Errorf("res[0]=%v; want %v", res[0], want)
	}
	if want:=QuadraticResolution(1); res[1]!=want {
		t.Errorf("zero distance res[1]=%v; want fallback %v", res[1], want)
	}
	if want:=QuadraticResolution(2); res[2]!=want {
		t.Errorf("NaN distance res[2]=%v; want fallback %v", res[2], want)
	}

	res=ColumnResolution(slat, slon, ResolutionQuadratic)
	if want:=QuadraticResolution(0); res[0]!=want {
		t.Errorf("quadratic res[0]=%v; want %v", res[0], want)
	}
}

func TestParseResolutionMode(t *testing.T) {
	for _, m:=range []ResolutionMode{ResolutionGeodesic, ResolutionQuadratic} {
		got, err:=ParseResolutionMode(m.String())
		if err!=nil || got!=m { t.Errorf("parse %s=%v, %v; want %v", m, got, err, m) }
	}
	if _, err:=ParseResolutionMode("bogus"); err==nil {
		t.Errorf("parse bogus succeeded; want error")
	}
}
