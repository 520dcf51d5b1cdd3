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


package geo

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/granule/granuletest"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/sortidx"
	"github.com/mlnoga/viirsresam/internal/tables"
)

func near(a, b, eps float32) bool { return math.Abs(float64(a-b))<=float64(eps) }

func TestDifferencesAndRecombine(t *testing.T) {
	lat  :=grid.FromData(2, 1, []float32{10, -20})
	lon  :=grid.FromData(2, 1, []float32{179.9, 30})
	tclat:=grid.FromData(2, 1, []float32{10.5, -20.25})
	tclon:=grid.FromData(2, 1, []float32{-179.9, 29.5})

	latDiff, lonDiff:=Differences(lat, lon, tclat, tclon)
	if !near(latDiff.Data[0], 0.5, 1e-5) || !near(latDiff.Data[1], -0.25, 1e-5) {
		t.Errorf("latDiff=%v; want [0.5 -0.25]", latDiff.Data)
	}
	if !near(lonDiff.Data[0], 0.2, 1e-3) || !near(lonDiff.Data[1], -0.5, 1e-3) {
		t.Errorf("lonDiff=%v; want [0.2 -0.5] across the dateline", lonDiff.Data)
	}

	gotLat, gotLon:=Recombine(lat, lon, latDiff, lonDiff, tclat, tclon)
	for i:=range tclat.Data {
		if !near(gotLat.Data[i], tclat.Data[i], 1e-4) { t.Errorf("tclat[%d]=%v; want %v", i, gotLat.Data[i], tclat.Data[i]) }
		if !near(gotLon.Data[i], tclon.Data[i], 1e-3) { t.Errorf("tclon[%d]=%v; want %v", i, gotLon.Data[i], tclon.Data[i]) }
	}

	nan:=float32(math.NaN())
	latDiff.Data[1], lonDiff.Data[0]=nan, nan
	orig:=grid.FromData(2, 1, []float32{-999.3, -999.3})
	gotLat, gotLon=Recombine(lat, lon, latDiff, lonDiff, orig, orig)
	if gotLat.Data[1]!=-999.3 || gotLon.Data[0]!=-999.3 {
		t.Errorf("NaN differences gave %v %v; want originals kept", gotLat.Data[1], gotLon.Data[0])
	}
}

func TestOpSortGeo(t *testing.T) {
	h:=2*tables.Detectors
	lat, lon:=granuletest.Swath(h)
	g:=granuletest.Geo(t, filepath.Join(t.TempDir(), "GMODO_npp_d20200101"), lat, lon)
	c:=ops.NewContext(&bytes.Buffer{}, config.Default())
	if _, err:=NewOpSortGeo(false).Apply(g, c); err!=nil { t.Fatalf("err=%v", err) }

	sind:=sortidx.BuildDefault(h)
	wantLat, wantLon:=sortidx.Gather(sind, lat, 0), sortidx.Gather(sind, lon, 0)
	gotLat:=granuletest.Read(t, g, granule.LatitudeName).Grid
	gotLon:=granuletest.Read(t, g, granule.LongitudeName).Grid
	for i:=range wantLat.Data {
		if gotLat.Data[i]!=wantLat.Data[i] || gotLon.Data[i]!=wantLon.Data[i] {
			t.Fatalf("pixel %d=(%v,%v); want (%v,%v)", i, gotLat.Data[i], gotLon.Data[i], wantLat.Data[i], wantLon.Data[i])
		}
	}
	for _, name:=range []string{granule.LatitudeName, granule.LongitudeName} {
		v, ok, err:=g.ReadAttribute(name, granule.GeoAttrName)
		if err!=nil || !ok || v!=1 { t.Errorf("%s attribute=%v,%v,%v; want 1", name, v, ok, err) }
	}
}

func TestOpTerrainGeoConstantCorrection(t *testing.T) {
	h:=2*tables.Detectors
	dir:=t.TempDir()
	lat, lon:=granuletest.Swath(h)
	modoDir:=filepath.Join(dir, "GMODO_npp_d20200101")
	granuletest.Geo(t, modoDir, lat, lon)

	tclat, tclon:=lat.Clone(), lon.Clone()
	for i:=range tclat.Data {
		tclat.Data[i]+=0.01
		tclon.Data[i]+=0.02
	}
	g:=granuletest.New(t, filepath.Join(dir, "GMTCO_npp_d20200101"))
	granuletest.Create(t, g, granule.TCLatitudeName,  granule.EncodingFloat32, 1, 0, tclat)
	granuletest.Create(t, g, granule.TCLongitudeName, granule.EncodingFloat32, 1, 0, tclon)

	buf:=&bytes.Buffer{}
	c:=ops.NewContext(buf, config.Default())
	if _, err:=NewOpTerrainGeo(config.Default().Resampling, modoDir).Apply(g, c); err!=nil { t.Fatalf("err=%v; log:\n%s", err, buf.String()) }

	gotLat:=granuletest.Read(t, g, granule.TCLatitudeName).Grid
	gotLon:=granuletest.Read(t, g, granule.TCLongitudeName).Grid
	for i:=range tclat.Data {
		if !near(gotLat.Data[i], tclat.Data[i], 1e-4) || !near(gotLon.Data[i], tclon.Data[i], 1e-3) {
			t.Fatalf("pixel %d=(%v,%v); want (%v,%v)", i, gotLat.Data[i], gotLon.Data[i], tclat.Data[i], tclon.Data[i])
		}
	}
	if _, ok, _:=g.ReadAttribute(granule.TCLatitudeName, granule.GeoAttrName); !ok {
		t.Errorf("terrain-corrected latitude lacks the %s attribute", granule.GeoAttrName)
	}

	missing:=NewOpTerrainGeo(config.Default().Resampling, filepath.Join(dir, "none"))
	if _, err:=missing.Apply(g, c); err==nil { t.Errorf("missing GMODO err=nil; want error") }
}
