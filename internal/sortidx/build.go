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



// Package sortidx builds the latitude sort index of a VIIRS swath, adapts the
// column break points to the observed geometry, and reorders grids with it.
package sortidx

import (
	"fmt"

	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/tables"
)

// Column break points, one row of tables.Segments increasing thresholds per scan
type BreakPoints [][tables.Segments]int

// Returns the default break points for a swath with the given height
func DefaultBreakPoints(height int) BreakPoints {
	bp:=make(BreakPoints, height/tables.Detectors)
	for k:=range bp {
		bp[k]=tables.BreakPoints
	}
	return bp
}

// Returns a deep copy
func (bp BreakPoints) Clone() BreakPoints {
	return append(BreakPoints(nil), bp...)
}

// Checks that the height is a positive multiple of the scan size
func CheckHeight(height int) error {
	if height<tables.Detectors || height%tables.Detectors!=0 {
		return fmt.Errorf("invalid height %d (not a positive multiple of %d)", height, tables.Detectors)
	}
	return nil
}

// Builds the sort index for the default break points. Depends only on the height
func BuildDefault(height int) *grid.Grid[int32] {
	bp:=DefaultBreakPoints(height)
	return Build(height, bp, bp)
}

// Builds a sort index of the given height and tables.Width columns. Row y of 
// the result holds, for each column, the source row to read in order to get 
// latitude-sorted data. Left and right give per-scan break points for the two
// halves of the swath; the right half is mirrored around the swath center.
// Panics on an invalid height or on a break point table of the wrong length.
func Build(height int, left, right BreakPoints) *grid.Grid[int32] {
	if err:=CheckHeight(height); err!=nil { panic(err.Error()) }
	scans:=height/tables.Detectors
	if len(left)!=scans || len(right)!=scans {
		panic(fmt.Sprintf("break points for %d/%d scans, want %d", len(left), len(right), scans))
	}

	sind:=grid.New[int32](tables.Width, height)
	for y:=0; y<height; y++ {
		offs:=tables.For(y, height)[y%tables.Detectors]
		row :=sind.Row(y)
		lbp, rbp:=&left[y/tables.Detectors], &right[y/tables.Detectors]

		x:=0
		for i:=0; i<tables.Segments; i++ {
			for ; x<lbp[i]; x++ {
				row[x]=int32(y+offs[i])
			}
		}

		x=tables.Width-1
		for i:=0; i<tables.Segments; i++ {
			for xe:=tables.Width-rbp[i]; x>=xe; x-- {
				row[x]=int32(y+offs[i])
			}
		}
	}
	return sind
}
