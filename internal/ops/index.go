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


package ops

import (
	"fmt"

	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/resam"
	"github.com/mlnoga/viirsresam/internal/sortidx"
)

// Returns the latitude sort index of a swath, adapted to the latitude data 
// if requested. Fails for grids not shaped like a VIIRS swath
func SortIndex(lat *grid.Grid[float32], adaptive bool, workers int) (*grid.Grid[int32], error) {
	if err:=resam.CheckShape(lat, lat, lat); err!=nil { return nil, err }
	if adaptive {
		sind, _, _:=sortidx.BuildAdjusted(lat, workers)
		return sind, nil
	}
	return sortidx.BuildDefault(lat.Height), nil
}

// Returns an error unless all grids have the same dimensions as the first
func SameShapes(id int, names []string, gs ...*grid.Grid[float32]) error {
	for i:=1; i<len(gs); i++ {
		if !grid.SameShape(gs[0], gs[i]) {
			return fmt.Errorf("%d: %s is %s, but %s is %s: %w", id, names[i], gs[i].DimensionsToString(), 
				names[0], gs[0].DimensionsToString(), resam.ErrShape)
		}
	}
	return nil
}
