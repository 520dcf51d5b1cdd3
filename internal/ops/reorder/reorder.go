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


// Package reorder puts the fields of level-2 granules into latitude order 
// without resampling them.
package reorder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/sortidx"
)

// Gathers the named fields of a granule with the adaptive sort index of its 
// latitude field. The first field is the latitude. Without fields, the preset 
// for the granule's file type is used. Takes one input, produces one output
type OpReorder struct {
	ops.OpUnaryBase
	Fields   []string `json:"fields"`
	Adaptive bool     `json:"adaptive"`
}

var _ ops.OperatorUnary = (*OpReorder)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpReorderDefault() })} // register the operator for JSON decoding

func NewOpReorderDefault() *OpReorder { return NewOpReorder(nil) }

func NewOpReorder(fields []string) *OpReorder {
	op:=OpReorder{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "reorder", Active: true}},
		Fields      : fields,
		Adaptive    : true,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpReorder) UnmarshalJSON(data []byte) error {
	type defaults OpReorder
	def:=defaults( *NewOpReorderDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpReorder(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

// Returns the fields to reorder for the given granule
func (op *OpReorder) fields(g *granule.Granule) ([]string, error) {
	if len(op.Fields)>0 { return op.Fields, nil }
	t:=granule.FileTypeOf(g.Dir)
	preset, ok:=granule.ReorderPresets[t]
	if !ok { return nil, fmt.Errorf("%d: no fields given and no preset for %v granule %s", g.ID, t, g.Dir) }
	return preset, nil
}

func (op *OpReorder) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	names, err:=op.fields(g)
	if err!=nil { return nil, err }

	fields:=make([]*granule.Field, len(names))
	for i, name:=range names {
		if fields[i], err=g.ReadField(name); err!=nil { return nil, err }
	}
	for i:=range fields {
		if err=ops.SameShapes(g.ID, []string{names[0], names[i]}, fields[0].Grid, fields[i].Grid); err!=nil { return nil, err }
	}
	sind, err:=ops.SortIndex(fields[0].Grid, op.Adaptive, c.MaxThreads)
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }

	fmt.Fprintf(c.Log, "%d: Reordering %s fields %s\n", g.ID, fields[0].Grid.DimensionsToString(), strings.Join(names, ", "))
	for _, f:=range fields {
		if err=g.WriteField(f.WithGrid(f.Name, sortidx.Gather(sind, f.Grid, c.MaxThreads))); err!=nil { return nil, err }
	}
	return g, nil
}
