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
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/tables"
)

// Adapts the break points of the left swath half to a latitude grid which was 
// sorted with the default index. Scan 0 keeps the defaults. For every later scan,
// the latitude step from the last detector of the previous scan to the last 
// detector of this scan is expected to have the same sign as at the swath center.
// Where this fails next to a boundary, the boundary walks outward until the sign
// matches again or the neighboring boundary is reached.
func Adapt(slat *grid.Grid[float32]) BreakPoints {
	bp:=DefaultBreakPoints(slat.Height)
	for k:=1; k<len(bp); k++ {
		adaptScan(slat, k, &bp[k])
	}
	return bp
}

// Adapts break points for both halves. The right half is computed on the 
// column-mirrored grid
func AdaptBoth(slat *grid.Grid[float32]) (left, right BreakPoints) {
	return Adapt(slat), Adapt(slat.MirrorColumns())
}

// Builds the adjusted sort index for a raw latitude grid: sorts with the default
// index, adapts the break points of both halves and rebuilds the index with them
func BuildAdjusted(lat *grid.Grid[float32], workers int) (sind *grid.Grid[int32], left, right BreakPoints) {
	slat:=Gather(BuildDefault(lat.Height), lat, workers)
	left, right=AdaptBoth(slat)
	return Build(lat.Height, left, right), left, right
}

func adaptScan(slat *grid.Grid[float32], k int, bp *[tables.Segments]int) {
	r0:=slat.Row(k*tables.Detectors-1)
	r1:=slat.Row(k*tables.Detectors+tables.Detectors-1)
	sign:=func(x int) int { return sgn(r1[x]-r0[x]) }

	expect:=sign(tables.Center)
	if expect==0 { return }  // degenerate scan

	nominal:=*bp
	for j:=0; j<tables.Segments-1; j++ {
		b:=nominal[j]
		if sign(b-1)!=expect {
			lower:=0
			if j>0 { lower=bp[j-1] }
			d:=1
			for {
				d++
				if x:=b-d; x<=lower || sign(x)==expect { break }
			}
			bp[j]=b-(d-1)
			if bp[j]<=lower { bp[j]=lower+1 }  // keep segment j-1 non-empty
		} else if sign(b+1)!=expect {
			upper:=nominal[j+1]
			d:=1
			for {
				d++
				if x:=b+d; x>=upper || sign(x)==expect { break }
			}
			bp[j]=b+(d-1)
		}
	}
}

// Sign of a latitude step. NaN counts as zero
func sgn(d float32) int {
	switch {
	case d>0: return  1
	case d<0: return -1
	default:  return  0
	}
}
