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
	"github.com/mlnoga/viirsresam/internal/tables"
)

// Reconstructs a longitude sequence for one column which is consistent with 
// the latitude sort order. Rows which kept their position (sind[i]==i) are 
// anchors and keep their sorted longitude. Each scan gets an additional anchor
// between its two central detectors, at row i-0.5 with the mean unsorted 
// longitude of rows i-1 and i. All other rows are interpolated linearly between
// the surrounding anchors. Rows before the first anchor take its value, rows 
// after the last anchor the value of the last one. 
func MonotonizeLon(sind []int32, slon, lon, dst []float32) {
	n:=len(slon)
	pending:=0
	havePrev, prevPos, prevLon:=false, 0.0, 0.0

	anchor:=func(pos, val float64, upto int) {
		for k:=pending; k<upto; k++ {
			if havePrev {
				dst[k]=float32(lonLerp(prevPos, prevLon, pos, val, float64(k)))
			} else {
				dst[k]=float32(val)
			}
		}
		pending=upto
		havePrev, prevPos, prevLon=true, pos, val
	}

	for i:=0; i<n; i++ {
		if i>0 && i%tables.Detectors==tables.Detectors/2 {
			mid:=lonLerp(0, float64(lon[i-1]), 1, float64(lon[i]), 0.5)
			anchor(float64(i)-0.5, mid, i)
		}
		if int(sind[i])==i {
			anchor(float64(i), float64(slon[i]), i)
			dst[i]=slon[i]
			pending=i+1
		}
	}

	if !havePrev {
		copy(dst, slon)
		return
	}
	for k:=pending; k<n; k++ {
		dst[k]=float32(prevLon)
	}
}
