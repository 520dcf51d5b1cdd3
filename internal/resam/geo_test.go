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
)

func TestGeoDist(t *testing.T) {
	degree:=2*math.Pi*EarthRadius/360
	cases:=[]struct{
		lat1, lon1, lat2, lon2 float64
		want float64
	}{
		{  0,      0,  0,      0, 0        },
		{  0,      0,  0,      1, degree   },
		{  0,      0,  1,      0, degree   },
		{  0,  179.5,  0, -179.5, degree   },
		{ 90,      0, 90,     45, 0        },
		{  0,      0,  0,    180, degree*180 },
	}
	for _, c:=range cases {
		got:=GeoDist(c.lat1, c.lon1, c.lat2, c.lon2)
		if math.Abs(got-c.want)>1e-6*math.Max(1, c.want) {
			t.Errorf("GeoDist(%v,%v,%v,%v)=%v; want %v", c.lat1, c.lon1, c.lat2, c.lon2, got, c.want)
		}
		if back:=GeoDist(c.lat2, c.lon2, c.lat1, c.lon1); math.Abs(back-got)>1e-9 {
			t.Errorf("GeoDist not symmetric: %v vs %v", got, back)
		}
	}
}

func TestLonSum(t *testing.T) {
	cases:=[]struct{ a, b, want float64 }{
		{  10,   20,   30 },
		{ 170,   20, -170 },
		{-170,  -20,  170 },
		{  45,  -45,    0 },
		{ 100, -100,    0 },
	}
	for _, c:=range cases {
		if got:=LonSum(c.a, c.b); math.Abs(got-c.want)>1e-9 {
			t.Errorf("LonSum(%v,%v)=%v; want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestLonLerpCrossesDateline(t *testing.T) {
	if got:=lonLerp(0, 179, 1, -179, 0.5); got!=-180 {
		t.Errorf("midpoint=%v; want -180", got)
	}
	if got:=lonLerp(0, 179, 4, -179, 1); math.Abs(got-179.5)>1e-9 {
		t.Errorf("quarter=%v; want 179.5", got)
	}
	if got:=lonLerp(0, -179, 4, 179, 1); math.Abs(got+179.5)>1e-9 {
		t.Errorf("reverse quarter=%v; want -179.5", got)
	}
	if got:=lonLerp(0, 10, 2, 20, 1); got!=15 {
		t.Errorf("plain midpoint=%v; want 15", got)
	}
}

func TestWrapLon(t *testing.T) {
	for _, c:=range []struct{ in, want float64 }{ {0,0}, {180,-180}, {190,-170}, {-190,170}, {540,-180}, {-180,-180} } {
		if got:=wrapLon(c.in); got!=c.want {
			t.Errorf("wrapLon(%v)=%v; want %v", c.in, got, c.want)
		}
	}
}
