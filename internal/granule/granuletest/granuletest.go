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


// Package granuletest builds synthetic granules for tests.
package granuletest

import (
	"io"
	"testing"

	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/tables"
)

// Returns swath geolocation with latitude rising along track and longitude
// rising across track
func Swath(h int) (lat, lon *grid.Grid[float32]) {
	w:=tables.Width
	lat, lon=grid.New[float32](w, h), grid.New[float32](w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			lat.Set(y, x, 40+0.01*float32(y))
			lon.Set(y, x, 10+0.001*float32(x))
		}
	}
	return lat, lon
}

// Returns a swath-shaped grid filled with v
func Constant(h int, v float32) *grid.Grid[float32] {
	g:=grid.New[float32](tables.Width, h)
	for i:=range g.Data { g.Data[i]=v }
	return g
}

// Creates a granule directory, failing the test on errors
func New(t testing.TB, dir string) *granule.Granule {
	t.Helper()
	g, err:=granule.New(dir, 0, io.Discard)
	if err!=nil { t.Fatalf("creating granule %s: %v", dir, err) }
	return g
}

// Creates a field in g, failing the test on errors
func Create(t testing.TB, g *granule.Granule, name string, enc granule.Encoding, gain, offset float32, data *grid.Grid[float32]) {
	t.Helper()
	f:=granule.NewField(name, enc, data)
	f.Gain, f.Offset=gain, offset
	if err:=g.Create(f); err!=nil { t.Fatalf("creating field %s: %v", name, err) }
}

// Creates a geolocation granule with the given latitude and longitude
func Geo(t testing.TB, dir string, lat, lon *grid.Grid[float32]) *granule.Granule {
	t.Helper()
	g:=New(t, dir)
	Create(t, g, granule.LatitudeName,  granule.EncodingFloat32, 1, 0, lat)
	Create(t, g, granule.LongitudeName, granule.EncodingFloat32, 1, 0, lon)
	return g
}

// Reads a field, failing the test on errors
func Read(t testing.TB, g *granule.Granule, name string) *granule.Field {
	t.Helper()
	f, err:=g.ReadField(name)
	if err!=nil { t.Fatalf("reading field %s: %v", name, err) }
	return f
}
