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


package reorder

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/granule/granuletest"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/tables"
)

func randomGrid(rng *fastrand.RNG, h int) *grid.Grid[float32] {
	g:=grid.New[float32](tables.Width, h)
	for i:=range g.Data { g.Data[i]=float32(rng.Uint32n(65536)) }
	return g
}

func TestReorderGHRSSTPreset(t *testing.T) {
	h:=3*tables.Detectors
	dir:=filepath.Join(t.TempDir(), "20200101000000-OSPO-L2P_GHRSST-SSTsubskin-VIIRS_NPP-ACSPO_V2.61-v02.0-fv01.0")
	g:=granuletest.New(t, dir)
	lat, lon:=granuletest.Swath(h)
	rng:=fastrand.RNG{}
	orig:=map[string]*grid.Grid[float32]{
		"lat": lat,
		"lon": lon,
		"sea_surface_temperature":     randomGrid(&rng, h),
		"brightness_temperature_12um": randomGrid(&rng, h),
		"l2p_flags":                   randomGrid(&rng, h),
	}
	for name, data:=range orig {
		enc:=granule.EncodingFloat32
		if name=="l2p_flags" { enc=granule.EncodingUint16 }
		granuletest.Create(t, g, name, enc, 1, 0, data)
	}

	c:=ops.NewContext(&bytes.Buffer{}, config.Default())
	if _, err:=NewOpReorder(nil).Apply(g, c); err!=nil { t.Fatalf("err=%v", err) }

	sind, err:=ops.SortIndex(lat, true, 0)
	if err!=nil { t.Fatalf("err=%v", err) }
	for name, data:=range orig {
		got:=granuletest.Read(t, g, name).Grid
		for y:=0; y<h; y++ {
			for x:=0; x<tables.Width; x++ {
				if want:=data.At(int(sind.At(y, x)), x); got.At(y, x)!=want {
					t.Fatalf("%s(%d,%d)=%v; want %v", name, y, x, got.At(y, x), want)
				}
			}
		}
	}
}

func TestReorderNeedsFields(t *testing.T) {
	g:=granuletest.New(t, filepath.Join(t.TempDir(), "SVM15_npp"))
	c:=ops.NewContext(&bytes.Buffer{}, config.Default())
	if _, err:=NewOpReorder(nil).Apply(g, c); err==nil { t.Errorf("unknown file type err=nil; want error") }
	if _, err:=NewOpReorder([]string{"lat"}).Apply(g, c); err==nil { t.Errorf("missing field err=nil; want error") }
}
