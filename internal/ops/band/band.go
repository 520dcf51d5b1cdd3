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


// Package band resamples the bow-tie deletion zones of VIIRS M-band SDR granules.
package band

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mlnoga/viirsresam/internal/config"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/resam"
	"github.com/mlnoga/viirsresam/internal/sortidx"
)

// Resamples one M-band of a granule using the geolocation of a GMODO granule.
// Takes one input, produces one output
type OpResampleBand struct {
	ops.OpUnaryBase
	Geo         string               `json:"geo"`          // directory of the geolocation granule
	Band        int                  `json:"band"`         // 0 derives the band from the granule name
	Sorted      bool                 `json:"sorted"`
	Extra       bool                 `json:"extra"`        // also store the reordered original field
	Adaptive    bool                 `json:"adaptive"`
	KeepInOrder bool                 `json:"keepInOrder"`
	Resolution  resam.ResolutionMode `json:"resolution"`
	DebugDir    string               `json:"debugDir"`
}

var _ ops.OperatorUnary = (*OpResampleBand)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpResampleBandDefault() })} // register the operator for JSON decoding

func NewOpResampleBandDefault() *OpResampleBand { return NewOpResampleBand(config.Default().Resampling, "") }

func NewOpResampleBand(r config.Resampling, geo string) *OpResampleBand {
	op:=OpResampleBand{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "resampleBand", Active: true}},
		Geo         : geo,
		Sorted      : r.Sorted,
		Extra       : r.Extra,
		Adaptive    : r.Adaptive,
		KeepInOrder : r.KeepInOrder,
		Resolution  : r.Resolution,
		DebugDir    : r.DebugDir,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpResampleBand) UnmarshalJSON(data []byte) error {
	type defaults OpResampleBand
	def:=defaults( *NewOpResampleBandDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpResampleBand(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

// Returns the band to process for the given granule
func (op *OpResampleBand) band(g *granule.Granule) (int, error) {
	if op.Band==0 {
		b, err:=granule.BandFromFileName(filepath.Base(filepath.Clean(g.Dir)))
		if err!=nil { return 0, fmt.Errorf("%d: %w", g.ID, err) }
		return b, nil
	}
	if op.Band<1 || op.Band>16 { return 0, fmt.Errorf("%d: invalid band %d", g.ID, op.Band) }
	return op.Band, nil
}

func (op *OpResampleBand) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	band, err:=op.band(g)
	if err!=nil { return nil, err }
	if err=c.CheckPath(op.Geo); err!=nil { return nil, err }
	if err=c.CheckPath(op.DebugDir); err!=nil { return nil, err }
	names:=granule.NamesForBand(band)
	fmt.Fprintf(c.Log, "%d: Resampling band M%02d field %s with geolocation from %s\n", g.ID, band, names.Field, op.Geo)

	geo, err:=granule.Open(op.Geo, g.ID, c.Log)
	if err!=nil { return nil, err }
	lat, err:=geo.ReadField(granule.LatitudeName)
	if err!=nil { return nil, err }
	lon, err:=geo.ReadField(granule.LongitudeName)
	if err!=nil { return nil, err }
	field, err:=g.ReadField(names.Field)
	if err!=nil { return nil, err }
	if field.Encoding!=names.Encoding {
		fmt.Fprintf(c.Log, "%d: Warning: band M%02d stored as %v, expected %v\n", g.ID, band, field.Encoding, names.Encoding)
	}
	err=ops.SameShapes(g.ID, []string{names.Field, granule.LatitudeName, granule.LongitudeName}, field.Grid, lat.Grid, lon.Grid)
	if err!=nil { return nil, err }
	if field.Encoding==granule.EncodingUint16 {
		fmt.Fprintf(c.Log, "%d: Image %s, scale %g offset %g\n", g.ID, field.Grid.DimensionsToString(), field.Gain, field.Offset)
	}

	cfg:=c.Config
	deletion:=granule.Deletion(cfg.Deletion)
	sentinel:=field.Sentinel(deletion)
	valid:=cfg.RangeFor(band)
	vals:=field.Decode()
	p:=&resam.Params{
		ID:          g.ID,
		Range:       valid,
		Sentinel:    sentinel,
		Resolution:  op.Resolution,
		Adaptive:    op.Adaptive,
		KeepInOrder: op.KeepInOrder,
		Sorted:      op.Sorted,
		Workers:     c.MaxThreads,
		Log:         c.Log,
		Dump:        ops.DumpToDir(op.DebugDir, fmt.Sprintf("%d_M%02d", g.ID, band), g.ID, c.Log),
	}
	res, err:=resam.Resample(vals, lat.Grid, lon.Grid, p)
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }

	// restore fills and quantize, comparing against originals in output order
	orig:=field.Grid
	if op.Sorted { orig=sortidx.Gather(res.Index, field.Grid, c.MaxThreads) }
	encoded, clamped:=field.Encode(vals, orig, deletion, g.ID, c.Log)
	if err=g.WriteField(field.WithGrid(field.Name, encoded)); err!=nil { return nil, err }

	already, err:=g.WriteAttribute(names.AttrGroup, names.AttrName, 1)
	if err!=nil { return nil, err }
	if already { fmt.Fprintf(c.Log, "%d: WARNING! Data was already resampled\n", g.ID) }

	if op.Extra {
		if err=g.Create(field.WithGrid(names.Reordered, sortidx.Gather(res.Index, field.Grid, c.MaxThreads))); err!=nil { return nil, err }
		fmt.Fprintf(c.Log, "%d: Wrote reordered original to %s\n", g.ID, names.Reordered)
	}
	if clamped>0 {
		fmt.Fprintf(c.Log, "%d: Warning: %d pixels clamped to the 16-bit range\n", g.ID, clamped)
	}
	ops.LogSummary(c, g.ID, names.Field, vals.Data, valid.Valid, sentinel)
	return g, nil
}
