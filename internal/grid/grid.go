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
	"fmt"
)

// Scalar pixel encodings a grid can hold
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// A single-channel 2D grid of samples, stored row by row. 
// Sample (y,x) lives at Data[y*Width+x].
type Grid[T Scalar] struct {
	Width  int
	Height int
	Data   []T
}

// Creates a zero-initialized grid of the given dimensions
func New[T Scalar](width, height int) *Grid[T] {
	return &Grid[T]{Width: width, Height: height, Data: make([]T, width*height)}
}

// Wraps existing data into a grid. Data is not copied. Panics if the length does not match
func FromData[T Scalar](width, height int, data []T) *Grid[T] {
	if len(data)!=width*height { 
		panic(fmt.Sprintf("grid: %d samples do not fit %dx%d", len(data), width, height)) 
	}
	return &Grid[T]{Width: width, Height: height, Data: data}
}

// Returns the sample at row y, column x
func (g *Grid[T]) At(y, x int) T { return g.Data[y*g.Width+x] }

// Sets the sample at row y, column x
func (g *Grid[T]) Set(y, x int, v T) { g.Data[y*g.Width+x]=v }

// Returns row y as a slice sharing the grid data
func (g *Grid[T]) Row(y int) []T { return g.Data[y*g.Width : (y+1)*g.Width] }

// Copies column x into dst, allocating if dst is too short
func (g *Grid[T]) Column(x int, dst []T) []T {
	if len(dst)<g.Height { dst=make([]T, g.Height) }
	dst=dst[:g.Height]
	for y, o:=0, x; y<g.Height; y, o=y+1, o+g.Width {
		dst[y]=g.Data[o]
	}
	return dst
}

// Copies src into column x
func (g *Grid[T]) SetColumn(x int, src []T) {
	for y, o:=0, x; y<g.Height; y, o=y+1, o+g.Width {
		g.Data[o]=src[y]
	}
}

// Returns a deep copy
func (g *Grid[T]) Clone() *Grid[T] {
	return &Grid[T]{Width: g.Width, Height: g.Height, Data: append([]T(nil), g.Data...)}
}

// Returns a copy with the column order reversed, so that column x becomes Width-1-x
func (g *Grid[T]) MirrorColumns() *Grid[T] {
	m:=New[T](g.Width, g.Height)
	for y:=0; y<g.Height; y++ {
		src, dst:=g.Row(y), m.Row(y)
		for x:=range src {
			dst[g.Width-1-x]=src[x]
		}
	}
	return m
}

// Returns dimensions as a string, e.g. 3200x768
func (g *Grid[T]) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Returns true if both grids have identical dimensions
func SameShape[A, B Scalar](a *Grid[A], b *Grid[B]) bool {
	return a.Width==b.Width && a.Height==b.Height
}

// Converts a grid into another scalar type, with Go conversion semantics
func Convert[D, S Scalar](src *Grid[S]) *Grid[D] {
	dst:=New[D](src.Width, src.Height)
	for i, v:=range src.Data {
		dst.Data[i]=D(v)
	}
	return dst
}
