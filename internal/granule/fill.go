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


package granule

import (
	"fmt"
	"io"
	"math"

	"github.com/mlnoga/viirsresam/internal/grid"
)

// Reserved codes of 16-bit SDR fields
const (
	FillNA          = 65535  // not applicable
	FillMiss        = 65534  // missing
	FillOnboardPT   = 65533  // onboard pixel trim, the bow-tie deletion zone
	FillOngroundPT  = 65532  // on-ground pixel trim
	FillErr         = 65531  // error
	FillElint       = 65530  // ellipsoid intersection failed
	FillVDNE        = 65529  // value does not exist
	FillSOUB        = 65528  // scaled out of bounds
)

// Reserved values of float SDR fields
const (
	FloatFillNA         = float32(-999.9)
	FloatFillMiss       = float32(-999.8)
	FloatFillOnboardPT  = float32(-999.7)
	FloatFillOngroundPT = float32(-999.6)
	FloatFillErr        = float32(-999.5)
	FloatFillElint      = float32(-999.4)
	FloatFillVDNE       = float32(-999.3)
	FloatFillSOUB       = float32(-999.2)
)

// Default deletion zone sentinels written by the resampler
const (
	DeletionCode  = FillOnboardPT
	DeletionFloat = float32(-999)
)

// Deletion zone sentinels for 16-bit and float fields
type Deletion struct {
	Code  uint16
	Float float32
}

var DefaultDeletion=Deletion{Code: DeletionCode, Float: DeletionFloat}

// Returns the stored deletion zone value for the given encoding
func (d Deletion) stored(e Encoding) float32 {
	if e==EncodingUint16 { return float32(d.Code) }
	return d.Float
}

// Returns true for codes which do not carry a measurement. Ellipsoid 
// intersection failures keep their value
func IsFillCode(c float32) bool {
	switch c {
	case FillNA, FillMiss, FillOnboardPT, FillOngroundPT, FillErr, FillVDNE, FillSOUB:
		return true
	}
	return false
}

// Returns true for float values which do not carry a measurement
func IsFillFloat(v float32) bool {
	switch v {
	case FloatFillNA, FloatFillMiss, FloatFillOnboardPT, FloatFillOngroundPT, FloatFillErr, FloatFillVDNE:
		return true
	}
	return false
}

func (f *Field) isFill(v float32) bool {
	if f.Encoding==EncodingUint16 { return IsFillCode(v) }
	return IsFillFloat(v)
}

// Returns the deletion zone sentinel d in physical units
func (f *Field) Sentinel(d Deletion) float32 {
	if f.Encoding==EncodingUint16 { return float32(float64(d.Code)*float64(f.Gain)+float64(f.Offset)) }
	return d.Float
}

// Returns the physical values of the field with fills replaced by NaN
func (f *Field) Decode() *grid.Grid[float32] {
	res:=grid.New[float32](f.Grid.Width, f.Grid.Height)
	for i, v:=range f.Grid.Data {
		switch {
		case f.isFill(v):                  res.Data[i]=float32(math.NaN())
		case f.Encoding==EncodingUint16:   res.Data[i]=v*f.Gain+f.Offset
		default:                           res.Data[i]=v
		}
	}
	return res
}

// Maximum number of clamped pixels reported individually
const maxClampWarnings=10

// Encodes resampled physical values into a new grid in the field's encoding. 
// orig holds the stored values before resampling, in the same row order as 
// vals. Where orig was a fill other than the deletion zone d, or vals is NaN, 
// the original value is kept. Codes outside [0,65535] are clamped with a 
// warning. Returns the encoded grid and the number of clamped pixels.
func (f *Field) Encode(vals, orig *grid.Grid[float32], d Deletion, id int, logWriter io.Writer) (*grid.Grid[float32], int) {
	res:=grid.New[float32](vals.Width, vals.Height)
	deletion:=d.stored(f.Encoding)
	clamped:=0
	for i, v:=range vals.Data {
		o:=orig.Data[i]
		if (f.isFill(o) && o!=deletion) || math.IsNaN(float64(v)) {
			res.Data[i]=o
			continue
		}
		if f.Encoding==EncodingFloat32 {
			res.Data[i]=v
			continue
		}
		j:=math.Round((float64(v)-float64(f.Offset))/float64(f.Gain))
		if j<0 || j>math.MaxUint16 {
			if clamped<maxClampWarnings {
				fmt.Fprintf(logWriter, "%d: Output data out of range at ( %5d %5d ): %.0f\n", id, i%vals.Width, i/vals.Width, j)
			}
			clamped++
			if j<0 { j=0 } else { j=math.MaxUint16 }
		}
		res.Data[i]=float32(j)
	}
	if clamped>maxClampWarnings {
		fmt.Fprintf(logWriter, "%d: %d pixels out of range in total\n", id, clamped)
	}
	return res, clamped
}
