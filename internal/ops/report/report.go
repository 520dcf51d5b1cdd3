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


// Package report summarizes granule fields and renders previews.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/mlnoga/viirsresam/internal/fits"
	"github.com/mlnoga/viirsresam/internal/granule"
	"github.com/mlnoga/viirsresam/internal/ops"
	"github.com/mlnoga/viirsresam/internal/stats"
)

// Reads and decodes the named field, or the band field for band granules if 
// name is empty. Returns the valid range check for band fields, else nil
func readField(g *granule.Granule, c *ops.Context, name string) (f *granule.Field, valid func(float32) bool, err error) {
	band:=0
	if name=="" {
		band, err=granule.BandFromFileName(filepath.Base(filepath.Clean(g.Dir)))
		if err!=nil { return nil, nil, fmt.Errorf("%d: no field given: %w", g.ID, err) }
		name=granule.NamesForBand(band).Field
	}
	if f, err=g.ReadField(name); err!=nil { return nil, nil, err }
	if band>0 { valid=c.Config.RangeFor(band).Valid }
	return f, valid, nil
}

// Logs summary statistics of a field, optionally also into a CSV file.
// Takes one input, produces one output
type OpStats struct {
	ops.OpUnaryBase
	Field    string     `json:"field"`    // empty for the band field of band granules
	CSVFile  string     `json:"csvFile"`
	mutex    sync.Mutex 
	written  bool
}

var _ ops.OperatorUnary = (*OpStats)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpStatsDefault() })} // register the operator for JSON decoding

func NewOpStatsDefault() *OpStats { return NewOpStats("", "") }

func NewOpStats(field, csvFile string) *OpStats {
	op:=&OpStats{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "stats", Active: true}},
		Field       : field,
		CSVFile     : csvFile,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpStats) UnmarshalJSON(data []byte) error {
	var aux struct {
		ops.OpBase
		Field   string `json:"field"`
		CSVFile string `json:"csvFile"`
	}
	aux.OpBase=ops.OpBase{Type: "stats", Active: true}
	if err:=json.Unmarshal(data, &aux); err!=nil { return err }
	op.OpBase, op.Field, op.CSVFile=aux.OpBase, aux.Field, aux.CSVFile
	op.OpUnaryBase.Apply=op.Apply 
	return nil
}

func (op *OpStats) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	f, valid, err:=readField(g, c, op.Field)
	if err!=nil { return nil, err }
	s:=ops.LogSummary(c, g.ID, f.Name, f.Decode().Data, valid, f.Sentinel(granule.Deletion(c.Config.Deletion)))
	if op.CSVFile=="" { return g, nil }
	if err=c.CheckPath(op.CSVFile); err!=nil { return nil, err }

	op.mutex.Lock()         // lock so a single thread is active
	defer op.mutex.Unlock() // always release lock on exit

	flags:=os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !op.written { flags|=os.O_TRUNC }
	file, err:=os.OpenFile(op.CSVFile, flags, 0644)
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }
	defer file.Close()
	if !op.written {
		fmt.Fprintf(file, "ID,Granule,Field,%s\n", s.ToCSVHeader())
		op.written=true
	}
	if _, err=fmt.Fprintf(file, "%d,%s,%s,%s\n", g.ID, g.Dir, f.Name, s.ToCSVLine()); err!=nil {
		return nil, fmt.Errorf("%d: %w", g.ID, err)
	}
	return g, nil
}


// Renders a field as 16-bit grayscale TIFF and/or false color JPEG, clipped
// at the configured quantiles. Takes one input, produces one output
type OpPreview struct {
	ops.OpUnaryBase
	Field string `json:"field"`   // empty for the band field of band granules
	Dir   string `json:"dir"`     // output directory
	TIFF  bool   `json:"tiff"`
	JPG   bool   `json:"jpg"`
}

var _ ops.OperatorUnary = (*OpPreview)(nil) // this type is a unary operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpPreviewDefault() })} // register the operator for JSON decoding

func NewOpPreviewDefault() *OpPreview { return NewOpPreview("", ".", false, true) }

func NewOpPreview(field, dir string, tiff, jpg bool) *OpPreview {
	op:=OpPreview{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "preview", Active: tiff || jpg}},
		Field       : field,
		Dir         : dir,
		TIFF        : tiff,
		JPG         : jpg,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpPreview) UnmarshalJSON(data []byte) error {
	type defaults OpPreview
	def:=defaults( *NewOpPreviewDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpPreview(def)
	op.OpUnaryBase.Apply=op.Apply // make method receiver point to op, not def
	return nil
}

// Returns the preview file name for the given field and suffix
func (op *OpPreview) fileName(g *granule.Granule, field, suffix string) string {
	return filepath.Join(op.Dir, fmt.Sprintf("%s_%s%s", filepath.Base(filepath.Clean(g.Dir)), path.Base(field), suffix))
}

func (op *OpPreview) Apply(g *granule.Granule, c *ops.Context) (result *granule.Granule, err error) {
	if err=c.CheckPath(op.Dir); err!=nil { return nil, err }
	f, valid, err:=readField(g, c, op.Field)
	if err!=nil { return nil, err }
	vals:=f.Decode()
	p:=c.Config.Preview
	low, high:=stats.ClipPoints(vals.Data, valid, p.LowQuantile, p.HighQuantile)
	if err=os.MkdirAll(op.Dir, 0755); err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }

	img:=fits.NewImageFromGrid(vals)
	img.ID=g.ID
	if op.TIFF {
		fileName:=op.fileName(g, f.Name, ".tif")
		fmt.Fprintf(c.Log, "%d: Writing %s pixel TIFF preview of %s clipped to [%.4g,%.4g] to %s\n", g.ID, img.DimensionsToString(), f.Name, low, high, fileName)
		if err=img.WriteMonoTIFF16ToFile(fileName, low, high, p.Gamma); err!=nil {
			return nil, fmt.Errorf("%d: Error writing to file %s: %w", g.ID, fileName, err)
		}
	}
	if op.JPG {
		fileName:=op.fileName(g, f.Name, ".jpg")
		fmt.Fprintf(c.Log, "%d: Writing %s pixel JPEG preview of %s clipped to [%.4g,%.4g] to %s\n", g.ID, img.DimensionsToString(), f.Name, low, high, fileName)
		if err=img.WriteColormapJPGToFile(fileName, low, high, p.Quality); err!=nil {
			return nil, fmt.Errorf("%d: Error writing to file %s: %w", g.ID, fileName, err)
		}
	}
	return g, nil
}
