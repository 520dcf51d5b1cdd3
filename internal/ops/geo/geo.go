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


// Package geo reorders and resamples VIIRS geolocation granules.
package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/resam"
	"github.com/mlnoga/viirsresam/internal/sortidx"
)

// Writes latitude and longitude into the named fields of g and marks both as resampled
func writeLatLon(g *granule.Granule, c *ops.Context, lat, lon *granule.Field) error {
	for _, f:=range []*granule.Field{lat, lon} {
		if err:=g.WriteField(f); err!=nil { return err }
		already, err:=g.WriteAttribute(f.Name, granule.GeoAttrName, 1)
		if err!=nil { return err }
		if already { fmt.Fprintf(c.Log, "%d: WARNING! Data was already resampled\n", g.ID) }
	}
	return nil
}

// Sorts latitude and longitude of a geolocation granule into latitude order.
// Takes one input, produces one output
type OpSortGeo struct {
	ops.OpUnaryBase
	Adaptive bool `json:"adaptive"`
}

var _ ops.OperatorUnary = (*OpSortGeo)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSortGeoDefault() })} // register the operator for JSON decoding

func NewOpSortGeoDefault() *OpSortGeo { return NewOpSortGeo(false) }

func NewOpSortGeo(adaptive bool) *OpSortGeo {
	op:=OpSortGeo{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "sortGeo", Active: true}},
		Adaptive    : adaptive,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSortGeo) UnmarshalJSON(data []byte) error {
	type defaults OpSortGeo
	def:=defaults( *NewOpSortGeoDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpSortGeo(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpSortGeo) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	lat, err:=g.ReadField(granule.LatitudeName)
	if err!=nil { return nil, err }
	lon, err:=g.ReadField(granule.LongitudeName)
	if err!=nil { return nil, err }
	if err=ops.SameShapes(g.ID, []string{granule.LatitudeName, granule.LongitudeName}, lat.Grid, lon.Grid); err!=nil { 
		return nil, err 
	}
	sind, err:=ops.SortIndex(lat.Grid, op.Adaptive, c.MaxThreads)
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }

	fmt.Fprintf(c.Log, "%d: Sorting %s geolocation, adaptive=%v\n", g.ID, lat.Grid.DimensionsToString(), op.Adaptive)
	slat:=lat.WithGrid(lat.Name, sortidx.Gather(sind, lat.Grid, c.MaxThreads))
	slon:=lon.WithGrid(lon.Name, sortidx.Gather(sind, lon.Grid, c.MaxThreads))
	if err=writeLatLon(g, c, slat, slon); err!=nil { return nil, err }
	return g, nil
}


// Resamples terrain-corrected geolocation: the differences between terrain-
// corrected and ellipsoid geolocation are resampled like a band and added back
// onto the ellipsoid geolocation of a GMODO granule. Applies to GMTCO granules.
// Takes one input, produces one output
type OpTerrainGeo struct {
	ops.OpUnaryBase
	GMODO       string               `json:"gmodo"`        // directory of the ellipsoid geolocation granule
	Sorted      bool                 `json:"sorted"`
	Adaptive    bool                 `json:"adaptive"`
	KeepInOrder bool                 `json:"keepInOrder"`
	Resolution  resam.ResolutionMode `json:"resolution"`
	DebugDir    string               `json:"debugDir"`
}

var _ ops.OperatorUnary = (*OpTerrainGeo)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpTerrainGeoDefault() })} // register the operator for JSON decoding

func NewOpTerrainGeoDefault() *OpTerrainGeo { return NewOpTerrainGeo(config.Default().Resampling, "") }

func NewOpTerrainGeo(r config.Resampling, gmodo string) *OpTerrainGeo {
	op:=OpTerrainGeo{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "terrainGeo", Active: true}},
		GMODO       : gmodo,
		Sorted      : r.Sorted,
		Adaptive    : r.Adaptive,
		KeepInOrder : r.KeepInOrder,
		Resolution  : r.Resolution,
		DebugDir    : r.DebugDir,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpTerrainGeo) UnmarshalJSON(data []byte) error {
	type defaults OpTerrainGeo
	def:=defaults( *NewOpTerrainGeoDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpTerrainGeo(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpTerrainGeo) params(id int, r resam.Range, name string, c *ops.Context) *resam.Params {
	return &resam.Params{
		ID:          id,
		Range:       r,
		Sentinel:    float32(math.NaN()),
		Resolution:  op.Resolution,
		Adaptive:    op.Adaptive,
		KeepInOrder: op.KeepInOrder,
		Sorted:      op.Sorted,
		Workers:     c.MaxThreads,
		Log:         c.Log,
		Dump:        ops.DumpToDir(op.DebugDir, fmt.Sprintf("%d_%s", id, name), id, c.Log),
	}
}

func (op *OpTerrainGeo) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	if err=c.CheckPath(op.GMODO); err!=nil { return nil, err }
	if err=c.CheckPath(op.DebugDir); err!=nil { return nil, err }
	modo, err:=granule.Open(op.GMODO, g.ID, c.Log)
	if err!=nil { return nil, err }
	lat, err:=modo.ReadField(granule.LatitudeName)
	if err!=nil { return nil, err }
	lon, err:=modo.ReadField(granule.LongitudeName)
	if err!=nil { return nil, err }
	tclat, err:=g.ReadField(granule.TCLatitudeName)
	if err!=nil { return nil, err }
	tclon, err:=g.ReadField(granule.TCLongitudeName)
	if err!=nil { return nil, err }
	err=ops.SameShapes(g.ID, []string{granule.LatitudeName, granule.LongitudeName, granule.TCLatitudeName, granule.TCLongitudeName},
		lat.Grid, lon.Grid, tclat.Grid, tclon.Grid)
	if err!=nil { return nil, err }

	latDiff, lonDiff:=Differences(lat.Grid, lon.Grid, tclat.Grid, tclon.Grid)

	fmt.Fprintf(c.Log, "%d: Resampling terrain-corrected latitude\n", g.ID)
	latRes, err:=resam.Resample(latDiff, lat.Grid, lon.Grid, op.params(g.ID, c.Config.Geo.LatDiff, "tclat", c))
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }
	fmt.Fprintf(c.Log, "%d: Resampling terrain-corrected longitude\n", g.ID)
	lonRes, err:=resam.Resample(lonDiff, lat.Grid, lon.Grid, op.params(g.ID, c.Config.Geo.LonDiff, "tclon", c))
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }

	latBase, lonBase, origLat, origLon:=lat.Grid, lon.Grid, tclat.Grid, tclon.Grid
	if op.Sorted {
		latBase, lonBase=latRes.SortedLat, lonRes.SortedLon
		origLat, origLon=sortidx.Gather(latRes.Index, tclat.Grid, c.MaxThreads), sortidx.Gather(lonRes.Index, tclon.Grid, c.MaxThreads)
	}
	tclatP, tclonP:=Recombine(latBase, lonBase, latDiff, lonDiff, origLat, origLon)

	err=writeLatLon(g, c, tclat.WithGrid(tclat.Name, tclatP), tclon.WithGrid(tclon.Name, tclonP))
	if err!=nil { return nil, err }
	return g, nil
}

// Returns the terrain correction as latitude difference tclat-lat and 
// longitude difference tclon-lon, the latter wrapped into (-180,180]
func Differences(lat, lon, tclat, tclon *grid.Grid[float32]) (latDiff, lonDiff *grid.Grid[float32]) {
	latDiff, lonDiff=grid.New[float32](lat.Width, lat.Height), grid.New[float32](lat.Width, lat.Height)
	for i:=range lat.Data {
		latDiff.Data[i]=tclat.Data[i]-lat.Data[i]
		lonDiff.Data[i]=float32(resam.LonSum(float64(tclon.Data[i]), -float64(lon.Data[i])))
	}
	return latDiff, lonDiff
}

// Applies resampled differences to the base geolocation. Where a difference 
// is NaN the original terrain-corrected value is kept
func Recombine(lat, lon, latDiff, lonDiff, origLat, origLon *grid.Grid[float32]) (tclat, tclon *grid.Grid[float32]) {
	tclat, tclon=grid.New[float32](lat.Width, lat.Height), grid.New[float32](lat.Width, lat.Height)
	for i:=range lat.Data {
		if d:=latDiff.Data[i]; math.IsNaN(float64(d)) {
			tclat.Data[i]=origLat.Data[i]
		} else {
			tclat.Data[i]=lat.Data[i]+d
		}
		if d:=lonDiff.Data[i]; math.IsNaN(float64(d)) {
			tclon.Data[i]=origLon.Data[i]
		} else {
			tclon.Data[i]=float32(resam.LonSum(float64(lon.Data[i]), float64(d)))
		}
	}
	return tclat, tclon
}
