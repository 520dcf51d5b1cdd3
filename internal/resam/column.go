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
)

// Marker for output rows without an approximation
var invalid=float32(math.NaN())

// Resamples one sorted column. sind, sval, slat and slon are the sort index, 
// value, latitude and longitude of the column in sorted order, and ilon the 
// monotonized longitude. Every interior row is approximated from itself and 
// its two neighbors at the sorted latitude and monotonized longitude. With 
// keepInOrder, rows with sind[i]==i are passed through instead. The first and 
// last row take the nearest valid interior result.
func ResampleColumn(sind []int32, sval, slat, slon, ilon []float32, res float64, r Range, sentinel float32, keepInOrder bool, dst []float32) {
	n:=len(sval)
	if n==0 { return }
	dst[0], dst[n-1]=invalid, invalid

	for i:=1; i<n-1; i++ {
		if keepInOrder && int(sind[i])==i {
			dst[i]=sval[i]
			continue
		}
		dst[i]=GeoApprox(sval[i-1:i+2], slat[i-1:i+2], slon[i-1:i+2], slat[i], ilon[i], res, r, sentinel)
	}

	for i:=1; i<n-1; i++ {
		if r.Valid(dst[i]) { dst[0]=dst[i]; break }
	}
	for i:=n-2; i>0; i-- {
		if r.Valid(dst[i]) { dst[n-1]=dst[i]; break }
	}
}
