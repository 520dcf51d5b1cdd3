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
	"fmt"

	"github.com/mlnoga/viirsresam/internal/grid"
)

// Reorders src by rows: dst[y][x] = src[sind[y][x]][x]. Runs at most workers
// column batches concurrently, <1 for all logical cores
func Gather[T grid.Scalar](sind *grid.Grid[int32], src *grid.Grid[T], workers int) *grid.Grid[T] {
	mustMatch(sind, src)
	w  :=src.Width
	dst:=grid.New[T](w, src.Height)
	grid.ForEachColumnBatch(w, workers, func(lo, hi int) {
		for y:=0; y<src.Height; y++ {
			o:=y*w
			for x:=lo; x<hi; x++ {
				dst.Data[o+x]=src.Data[int(sind.Data[o+x])*w+x]
			}
		}
	})
	return dst
}

// Inverts Gather: dst[sind[y][x]][x] = src[y][x]. If sind is not a permutation 
// within a column, the write from the highest source row wins and rows nobody 
// writes to stay zero.
func Scatter[T grid.Scalar](sind *grid.Grid[int32], src *grid.Grid[T], workers int) *grid.Grid[T] {
	mustMatch(sind, src)
	w  :=src.Width
	dst:=grid.New[T](w, src.Height)
	grid.ForEachColumnBatch(w, workers, func(lo, hi int) {
		for y:=0; y<src.Height; y++ {  // ascending rows, for last-write-wins
			o:=y*w
			for x:=lo; x<hi; x++ {
				dst.Data[int(sind.Data[o+x])*w+x]=src.Data[o+x]
			}
		}
	})
	return dst
}

// Returns true if every column of sind holds each row index exactly once
func IsPermutation(sind *grid.Grid[int32]) bool {
	seen:=make([]bool, sind.Height)
	for x:=0; x<sind.Width; x++ {
		for i:=range seen { seen[i]=false }
		for y:=0; y<sind.Height; y++ {
			s:=sind.At(y, x)
			if s<0 || int(s)>=sind.Height || seen[s] { return false }
			seen[s]=true
		}
	}
	return true
}

func mustMatch[T grid.Scalar](sind *grid.Grid[int32], src *grid.Grid[T]) {
	if !grid.SameShape(sind, src) {
		panic(fmt.Sprintf("sort index %s does not match grid %s", 
			sind.DimensionsToString(), src.DimensionsToString()))
	}
}
