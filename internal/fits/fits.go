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


// Package fits reads and writes single-field FITS files, the storage format
// of granule fields, and renders previews of them.
package fits

import (
	"fmt"
	"strings"

	"github.com/mlnoga/viirsresam/internal/grid"
)

// A FITS image holding one granule field. 
// Spec here:   https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf
// Primer here: https://fits.gsfc.nasa.gov/fits_primer.html
type Image struct {
	ID       int         // Sequential ID number, for log output
	FileName string      // Original file name, if any, for log output

	Header Header        // The header with all keys, values, comments, history entries etc.
	Bitpix int32         // Bits per pixel value from the header. Positive values are integral, negative floating.
	Bzero  float32       // Zero offset of the stored values. Stored value is (Data[i]-Bzero)/Bscale. 
	Bscale float32       // Value scaler of the stored values.
	                     // Helps implement unsigned values with signed data types.
	Naxisn []int32       // Axis dimensions. Most quickly varying dimension first (i.e. X,Y)
	Pixels int32         // Number of pixels in the image. Product of Naxisn[]

	Data   []float32     // The image data, with Bzero and Bscale applied
}

// Creates a FITS image initialized with empty header
func NewImage() *Image {
	return &Image{
		Header:  NewHeader(),
		Bscale:  1,
	}
}

// Creates a FITS image from given naxisn. Data is not copied, allocated if nil. naxisn is deep copied
func NewImageFromNaxisn(naxisn []int32, data []float32) *Image {
	numPixels:=int32(1)
	for _,naxis:=range(naxisn) {
		numPixels*=naxis
	}
	if data==nil {
		data=make([]float32, numPixels)
	}
	return &Image{
		Header:   NewHeader(),
		Bitpix:   -32,
		Bscale:   1,
		Naxisn:   append([]int32(nil), naxisn...), // clone slice
		Pixels:   numPixels,
		Data:     data,
	}
}

// Creates a float32 FITS image sharing the data of the given grid
func NewImageFromGrid(g *grid.Grid[float32]) *Image {
	return NewImageFromNaxisn([]int32{int32(g.Width), int32(g.Height)}, g.Data)
}

// Creates a FITS image storing unsigned 16-bit codes from the given grid. 
// The data is shared
func NewUint16ImageFromGrid(g *grid.Grid[float32]) *Image {
	f:=NewImageFromGrid(g)
	f.Bitpix, f.Bzero=16, 32768
	return f
}

// Returns a grid sharing the image data. Images with more than two axes
// are rejected, as each field holds a single channel
func (f *Image) Grid() (*grid.Grid[float32], error) {
	switch len(f.Naxisn) {
	case 1:
		return grid.FromData(int(f.Naxisn[0]), 1, f.Data), nil
	case 2:
		return grid.FromData(int(f.Naxisn[0]), int(f.Naxisn[1]), f.Data), nil
	}
	return nil, fmt.Errorf("%d: %s has %d axes %s, want 1 or 2", f.ID, f.FileName, len(f.Naxisn), f.DimensionsToString())
}


// FITS header data
type Header struct {
	Bools    map[string]bool
	Ints     map[string]int32
	Floats   map[string]float32
	Strings  map[string]string
	Dates    map[string]string
	Comments []string
	History  []string
	End      bool
	Length   int32
}

// Creates a FITS header initialized with empty maps and arrays
func NewHeader() Header {
	return Header{
		Bools:   make(map[string]bool), 
		Ints:    make(map[string]int32),
		Floats:  make(map[string]float32),
		Strings: make(map[string]string),
		Dates:   make(map[string]string),
		Comments:make([]string,0),
		History: make([]string,0),
		End:     false,
	}
}

// Returns a deep copy of the header
func (h Header) Clone() Header {
	c:=NewHeader()
	for k, v:=range h.Bools   { c.Bools[k]=v }
	for k, v:=range h.Ints    { c.Ints[k]=v }
	for k, v:=range h.Floats  { c.Floats[k]=v }
	for k, v:=range h.Strings { c.Strings[k]=v }
	for k, v:=range h.Dates   { c.Dates[k]=v }
	c.Comments=append(c.Comments, h.Comments...)
	c.History =append(c.History,  h.History...)
	return c
}

// Returns a numeric header value, whether stored as integer or float
func (h *Header) Number(key string) (float32, bool) {
	if v, ok:=h.Ints[key]; ok { return float32(v), true }
	v, ok:=h.Floats[key]
	return v, ok
}

const fitsBlockSize int      = 2880       // Block size of FITS header and data units
const HeaderLineSize int =   80       // Line size of a FITS header


func (f *Image) DimensionsToString() string {
	b:=strings.Builder{}
	for i,naxis:=range(f.Naxisn) {
		if i>0 { 
			fmt.Fprintf(&b, "x%d", naxis)
		} else {
			fmt.Fprintf(&b, "%d", naxis)
		}
	} 
	return b.String()
}
