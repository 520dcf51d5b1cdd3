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


package grid

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestColumnRoundtrip(t *testing.T) {
	g:=FromData(3, 2, []int32{1, 2, 3, 4, 5, 6})
	col:=g.Column(1, nil)
	if len(col)!=2 || col[0]!=2 || col[1]!=5 { t.Errorf("column 1=%v; want [2 5]", col) }
	g.SetColumn(2, []int32{7, 8})
	if g.At(0, 2)!=7 || g.At(1, 2)!=8 { t.Errorf("data=%v; want column 2 set to [7 8]", g.Data) }
	if r:=g.Row(1); r[0]!=4 || r[2]!=8 { t.Errorf("row 1=%v; want [4 5 8]", r) }
}

func TestMirrorColumns(t *testing.T) {
	g:=FromData(3, 2, []float32{1, 2, 3, 4, 5, 6})
	m:=g.MirrorColumns()
	want:=[]float32{3, 2, 1, 6, 5, 4}
	for i:=range want {
		if m.Data[i]!=want[i] { t.Fatalf("mirrored=%v; want %v", m.Data, want) }
	}
	if g.Data[0]!=1 { t.Errorf("mirroring modified the source") }
}

func TestConvertAndShape(t *testing.T) {
	g:=FromData(2, 1, []int32{-1, 7})
	f:=Convert[float32](g)
	if f.Data[0]!=-1 || f.Data[1]!=7 { t.Errorf("converted=%v; want [-1 7]", f.Data) }
	if !SameShape(g, f) { t.Errorf("converted grid %s; want %s", f.DimensionsToString(), g.DimensionsToString()) }
	if SameShape(g, New[float32](1, 2)) { t.Errorf("2x1 and 1x2 reported as same shape") }
	if s:=New[uint16](3200, 768).DimensionsToString(); s!="3200x768" { t.Errorf("dimensions %q; want 3200x768", s) }
}

func TestFromDataPanicsOnLength(t *testing.T) {
	defer func() {
		if recover()==nil { t.Errorf("FromData with 3 samples for 2x2 did not panic") }
	}()
	FromData(2, 2, []float32{1, 2, 3})
}

func TestForEachColumnBatchCoversAllColumns(t *testing.T) {
	for _, workers:=range []int{0, 1, 3, 64} {
		for _, width:=range []int{1, 7, 3200} {
			counts:=make([]int32, width)
			ForEachColumnBatch(width, workers, func(lo, hi int) {
				for x:=lo; x<hi; x++ { atomic.AddInt32(&counts[x], 1) }
			})
			for x, c:=range counts {
				if c!=1 { t.Fatalf("workers %d width %d: column %d visited %d times; want 1", workers, width, x, c) }
			}
		}
	}
	if DefaultWorkers()<1 { t.Errorf("DefaultWorkers()=%d; want at least 1", DefaultWorkers()) }
}

func TestForEachColumnBatchLimitsConcurrency(t *testing.T) {
	for _, workers:=range []int{1, 2, 4} {
		var running, peak int32
		ForEachColumnBatch(3200, workers, func(lo, hi int) {
			n:=atomic.AddInt32(&running, 1)
			for {
				p:=atomic.LoadInt32(&peak)
				if n<=p || atomic.CompareAndSwapInt32(&peak, p, n) { break }
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
		if peak>int32(workers) { t.Errorf("workers %d: %d batches ran concurrently", workers, peak) }
	}
}
