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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/sortidx"
	"github.com/mlnoga/viirsresam/internal/tables"
)

// Returned, wrapped with details, for swaths of unsupported shape
var ErrShape = errors.New("invalid swath shape")

// Sentinel for pixels in the deletion zone of float bands
const FloatSentinel = float32(-999)

// Sentinel code for pixels in the deletion zone of integer bands
const CodeSentinel = 65533

// Resampling parameters for one field
type Params struct {
	ID          int             // for log messages
	Range       Range           // valid physical range of the field
	Sentinel    float32         // written where no valid neighbor exists
	Resolution  ResolutionMode  
	Adaptive    bool            // adapt break points to the latitude data
	KeepInOrder bool            // pass rows which kept their position through unchanged
	Sorted      bool            // leave the output in latitude order
	Workers     int             // concurrent column batches, <1 for all logical cores
	Log         io.Writer       // optional
	Dump        func(name string, g *grid.Grid[float32])  // optional, receives intermediate grids
}

// Returns parameters for brightness temperatures with default settings
func DefaultParams() *Params {
	return &Params{
		Range:      TemperatureRange,
		Sentinel:   FloatSentinel,
		Resolution: ResolutionGeodesic,
		Adaptive:   true,
	}
}

// Resampling result besides the overwritten image
type Result struct {
	Index      *grid.Grid[int32]     // sort index used
	Left       sortidx.BreakPoints   // break points of the left half
	Right      sortidx.BreakPoints   // break points of the mirrored right half
	SortedLat  *grid.Grid[float32]   // sorted latitude, only for sorted output
	SortedLon  *grid.Grid[float32]   // monotonized longitude, only for sorted output
	Resolution []float64             // bandwidth per column in km
}

// Checks that image, latitude and longitude share a valid VIIRS swath shape
func CheckShape(img, lat, lon *grid.Grid[float32]) error {
	if img.Width!=tables.Width {
		return fmt.Errorf("%w: width %d, want %d", ErrShape, img.Width, tables.Width)
	}
	if err:=sortidx.CheckHeight(img.Height); err!=nil {
		return fmt.Errorf("%w: %v", ErrShape, err)
	}
	if !grid.SameShape(img, lat) || !grid.SameShape(img, lon) {
		return fmt.Errorf("%w: image %s, latitude %s, longitude %s", ErrShape, 
			img.DimensionsToString(), lat.DimensionsToString(), lon.DimensionsToString())
	}
	return nil
}

// Resamples img in place into latitude order, approximating reordered pixels 
// from their neighbors. With p.Sorted the result stays in sorted order, else it
// is scattered back into the original row order.
func Resample(img, lat, lon *grid.Grid[float32], p *Params) (*Result, error) {
	if err:=CheckShape(img, lat, lon); err!=nil { return nil, err }
	start:=time.Now()
	w, h:=img.Width, img.Height
	dump:=func(name string, g *grid.Grid[float32]) { if p.Dump!=nil { p.Dump(name, g) } }

	var sind *grid.Grid[int32]
	var left, right sortidx.BreakPoints
	if p.Adaptive {
		sind, left, right=sortidx.BuildAdjusted(lat, p.Workers)
	} else {
		sind=sortidx.BuildDefault(h)
		left=sortidx.DefaultBreakPoints(h)
		right=left.Clone()
	}
	dump("before", img)
	dump("lat", lat)
	dump("lon", lon)

	slat:=sortidx.Gather(sind, lat, p.Workers)
	slon:=sortidx.Gather(sind, lon, p.Workers)
	simg:=sortidx.Gather(sind, img, p.Workers)
	dump("sind", grid.Convert[float32](sind))
	dump("simg", simg)
	dump("slat", slat)
	dump("slon", slon)

	res:=ColumnResolution(slat, slon, p.Resolution)
	dump("res", grid.FromData(w, 1, toFloat32(res)))

	ilon:=grid.New[float32](w, h)
	dst :=grid.New[float32](w, h)
	grid.ForEachColumnBatch(w, p.Workers, func(lo, hi int) {
		var cSind []int32
		var cVal, cLat, cSlon, cLon, cIlon, cDst []float32
		cIlon, cDst=make([]float32, h), make([]float32, h)
		for x:=lo; x<hi; x++ {
			cSind=sind.Column(x, cSind)
			cVal =simg.Column(x, cVal)
			cLat =slat.Column(x, cLat)
			cSlon=slon.Column(x, cSlon)
			cLon =lon .Column(x, cLon)
			MonotonizeLon(cSind, cSlon, cLon, cIlon)
			ResampleColumn(cSind, cVal, cLat, cSlon, cIlon, res[x], p.Range, p.Sentinel, p.KeepInOrder, cDst)
			ilon.SetColumn(x, cIlon)
			dst .SetColumn(x, cDst)
		}
	})
	dump("ilon", ilon)

	result:=&Result{Index: sind, Left: left, Right: right, Resolution: res}
	if p.Sorted {
		copy(img.Data, dst.Data)
		result.SortedLat, result.SortedLon=slat, ilon
	} else {
		copy(img.Data, sortidx.Scatter(sind, dst, p.Workers).Data)
	}
	dump("after", img)

	if p.Log!=nil {
		moved:=0
		for y:=0; y<h; y++ {
			for _, s:=range sind.Row(y) {
				if int(s)!=y { moved++ }
			}
		}
		fmt.Fprintf(p.Log, "%d: Resampled %s swath, %.1f%% of pixels reordered, sorted=%v adaptive=%v in %v\n",
			p.ID, img.DimensionsToString(), 100*float64(moved)/float64(w*h), p.Sorted, p.Adaptive, time.Since(start))
	}
	return result, nil
}

func toFloat32(vs []float64) []float32 {
	res:=make([]float32, len(vs))
	for i, v:=range vs {
		res[i]=float32(v)
	}
	return res
}
