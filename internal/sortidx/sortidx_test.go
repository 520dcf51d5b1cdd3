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



package sortidx

import (
	"testing"

	"github.com/valyala/fastrand"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/tables"
)

func TestBuildDefaultRange(t *testing.T) {
	for _, h:=range []int{16, 32, 48, 64, 768} {
		sind:=BuildDefault(h)
		if sind.Width!=tables.Width || sind.Height!=h {
			t.Fatalf("h=%d dims=%s; want %dx%d", h, sind.DimensionsToString(), tables.Width, h)
		}
		for i, s:=range sind.Data {
			if s<0 || int(s)>=h {
				t.Fatalf("h=%d sind[%d][%d]=%d; want in [0,%d)", h, i/tables.Width, i%tables.Width, s, h)
			}
		}
	}
}

func TestBuildDefaultDeterministic(t *testing.T) {
	a, b:=BuildDefault(64), BuildDefault(64)
	for i:=range a.Data {
		if a.Data[i]!=b.Data[i] {
			t.Fatalf("index %d differs: %d vs %d", i, a.Data[i], b.Data[i])
		}
	}
}

func TestBuildSingleScanIsIdentity(t *testing.T) {
	sind:=BuildDefault(16)
	for y:=0; y<16; y++ {
		for x:=0; x<tables.Width; x++ {
			if s:=sind.At(y, x); int(s)!=y {
				t.Fatalf("sind[%d][%d]=%d; want %d", y, x, s, y)
			}
		}
	}
}

func TestBuildMirrorsHalves(t *testing.T) {
	sind:=BuildDefault(48)
	for y:=0; y<48; y++ {
		for x:=0; x<tables.Center; x++ {
			if l, r:=sind.At(y, x), sind.At(y, tables.Width-1-x); l!=r {
				t.Fatalf("row %d column %d: left %d right %d", y, x, l, r)
			}
		}
	}
}

func TestBuildUsesTables(t *testing.T) {
	sind:=BuildDefault(48)
	tcs:=[]struct{ y, x, want int }{
		{  8,    0,  16 }, // first scan, detector 8, segment 0
		{  9,   10,   8 }, // first scan, detector 9, segment 1
		{ 21,    0,  32 }, // mid scan, detector 5, segment 0: +11
		{ 26, 3199,  15 }, // mid scan, detector 10, mirrored segment 0: -11
		{ 39,    2,  31 }, // last scan, detector 7, segment 0: -8
		{ 40,    2,  40 }, // last scan, detector 8
		{ 20, 1599,  20 }, // segment 10 is never reordered
		{ 20, 1600,  20 },
	}
	for _, tc:=range tcs {
		if got:=int(sind.At(tc.y, tc.x)); got!=tc.want {
			t.Errorf("sind[%d][%d]=%d; want %d", tc.y, tc.x, got, tc.want)
		}
	}
}

func TestDefaultIsPermutation(t *testing.T) {
	for _, h:=range []int{16, 32, 48, 64, 128} {
		if !IsPermutation(BuildDefault(h)) {
			t.Errorf("h=%d default index is not a permutation", h)
		}
	}
}

func TestBuildPanicsOnBadHeight(t *testing.T) {
	for _, h:=range []int{0, 8, 17, 40} {
		func() {
			defer func() {
				if recover()==nil { t.Errorf("h=%d did not panic", h) }
			}()
			BuildDefault(h)
		}()
	}
}

func TestScatterGatherRoundtrip(t *testing.T) {
	rng:=fastrand.RNG{}
	h:=64
	sind:=BuildDefault(h)

	f:=grid.New[float32](tables.Width, h)
	for i:=range f.Data { f.Data[i]=float32(rng.Uint32n(100000))*0.01 }
	back:=Scatter(sind, Gather(sind, f, 0), 0)
	for i:=range f.Data {
		if back.Data[i]!=f.Data[i] {
			t.Fatalf("float32 pixel %d=%f; want %f", i, back.Data[i], f.Data[i])
		}
	}

	u:=grid.New[uint16](tables.Width, h)
	for i:=range u.Data { u.Data[i]=uint16(rng.Uint32n(65536)) }
	ub:=Scatter(sind, Gather(sind, u, 0), 0)
	for i:=range u.Data {
		if ub.Data[i]!=u.Data[i] {
			t.Fatalf("uint16 pixel %d=%d; want %d", i, ub.Data[i], u.Data[i])
		}
	}

	b:=grid.New[int8](tables.Width, h)
	for i:=range b.Data { b.Data[i]=int8(rng.Uint32n(256)) }
	bb:=Scatter(sind, Gather(sind, b, 0), 0)
	for i:=range b.Data {
		if bb.Data[i]!=b.Data[i] {
			t.Fatalf("int8 pixel %d=%d; want %d", i, bb.Data[i], b.Data[i])
		}
	}
}

func TestGatherReadsSourceRows(t *testing.T) {
	h:=32
	sind:=BuildDefault(h)
	rows:=grid.New[float64](tables.Width, h)
	for y:=0; y<h; y++ {
		for x:=0; x<tables.Width; x++ { rows.Set(y, x, float64(y)) }
	}
	g:=Gather(sind, rows, 0)
	for i:=range g.Data {
		if g.Data[i]!=float64(sind.Data[i]) {
			t.Fatalf("pixel %d=%f; want %d", i, g.Data[i], sind.Data[i])
		}
	}
}

// Scatter on a non-permutation keeps the last write and leaves unwritten cells at zero.
func TestScatterLastWriteWins(t *testing.T) {
	sind:=grid.New[int32](4, 3)
	src :=grid.New[int32](4, 3)
	for y:=0; y<3; y++ {
		for x:=0; x<4; x++ {
			sind.Set(y, x, int32(y))
			src.Set(y, x, int32(10*(y+1)+x))
		}
	}
	sind.Set(2, 1, 0) // rows 0 and 2 of column 1 both target row 0
	dst:=Scatter(sind, src, 0)
	if got:=dst.At(0, 1); got!=31 {
		t.Errorf("dst[0][1]=%d; want 31", got)
	}
	if got:=dst.At(2, 1); got!=0 {
		t.Errorf("dst[2][1]=%d; want 0", got)
	}
	if got:=dst.At(2, 0); got!=30 {
		t.Errorf("dst[2][0]=%d; want 30", got)
	}
	if IsPermutation(sind) {
		t.Errorf("IsPermutation=true; want false")
	}
}

func TestGatherPanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover()==nil { t.Errorf("no panic") }
	}()
	Gather(BuildDefault(16), grid.New[float32](tables.Width, 32), 0)
}

func TestGatherScatterWorkerCounts(t *testing.T) {
	rng:=fastrand.RNG{}
	h:=48
	sind:=BuildDefault(h)
	f:=grid.New[float32](tables.Width, h)
	for i:=range f.Data { f.Data[i]=float32(rng.Uint32n(1000)) }
	want:=Gather(sind, f, 0)
	for _, workers:=range []int{1, 3, 200} {
		g:=Gather(sind, f, workers)
		back:=Scatter(sind, g, workers)
		for i:=range f.Data {
			if g.Data[i]!=want.Data[i] { t.Fatalf("workers %d: gathered pixel %d=%v; want %v", workers, i, g.Data[i], want.Data[i]) }
			if back.Data[i]!=f.Data[i] { t.Fatalf("workers %d: scattered pixel %d=%v; want %v", workers, i, back.Data[i], f.Data[i]) }
		}
	}
}
