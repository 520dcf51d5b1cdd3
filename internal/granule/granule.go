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


// Package granule stores the named fields and attributes of a VIIRS granule
// as a directory tree of FITS files and YAML attribute sidecars.
package granule

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mlnoga/viirsresam/internal/fits"
	"github.com/mlnoga/viirsresam/internal/grid"
)

// File name suffix of stored fields
const FieldSuffix = ".fits"

// How the samples of a field are stored
type Encoding int

const (
	EncodingFloat32 Encoding = iota  // physical values
	EncodingUint16                   // integer codes, physical value is code*Gain+Offset
)

func (e Encoding) String() string {
	if e==EncodingUint16 { return "uint16" }
	return "float32"
}

// A named two-dimensional field. For uint16 fields the grid holds the codes
type Field struct {
	Name     string
	Encoding Encoding
	Gain     float32
	Offset   float32
	Grid     *grid.Grid[float32]

	header   fits.Header  // further keys, preserved on writing
}

// Creates a field with unit gain and zero offset
func NewField(name string, enc Encoding, g *grid.Grid[float32]) *Field {
	return &Field{Name: name, Encoding: enc, Gain: 1, Offset: 0, Grid: g, header: fits.NewHeader()}
}

// Returns a copy of the field with the given grid, keeping name, encoding and scaling
func (f *Field) WithGrid(name string, g *grid.Grid[float32]) *Field {
	c:=*f
	c.Name, c.Grid=name, g
	return &c
}

// A granule on disk
type Granule struct {
	ID  int        // for log output
	Dir string
	Log io.Writer
}

// Opens the granule stored in the given directory
func Open(dir string, id int, log io.Writer) (*Granule, error) {
	st, err:=os.Stat(dir)
	if err!=nil { return nil, fmt.Errorf("%d: %w", id, err) }
	if !st.IsDir() { return nil, fmt.Errorf("%d: %s is not a granule directory", id, dir) }
	if log==nil { log=io.Discard }
	return &Granule{ID: id, Dir: dir, Log: log}, nil
}

// Returns the file path for a slash-separated name plus suffix. Names must
// stay inside the granule
func (g *Granule) path(name, suffix string) (string, error) {
	clean:=path.Clean("/"+name)[1:]
	if clean=="" || clean!=strings.Trim(name, "/") {
		return "", fmt.Errorf("%d: invalid name '%s'", g.ID, name)
	}
	return filepath.Join(g.Dir, filepath.FromSlash(clean)+suffix), nil
}

// Returns true if the granule holds the named field
func (g *Granule) HasField(name string) bool {
	p, err:=g.path(name, FieldSuffix)
	if err!=nil { return false }
	_, err=os.Stat(p)
	return err==nil
}

// Lists the names of all fields, sorted
func (g *Granule) Fields() ([]string, error) {
	var names []string
	err:=filepath.WalkDir(g.Dir, func(p string, d fs.DirEntry, err error) error {
		if err!=nil { return err }
		if d.IsDir() || !strings.HasSuffix(p, FieldSuffix) { return nil }
		rel, err:=filepath.Rel(g.Dir, p)
		if err!=nil { return err }
		names=append(names, strings.TrimSuffix(filepath.ToSlash(rel), FieldSuffix))
		return nil
	})
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }
	sort.Strings(names)
	return names, nil
}

// Reads the named field
func (g *Granule) ReadField(name string) (*Field, error) {
	p, err:=g.path(name, FieldSuffix)
	if err!=nil { return nil, err }
	img, err:=fits.NewImageFromFile(p, g.ID, g.Log)
	if err!=nil { return nil, fmt.Errorf("%d: reading field %s: %w", g.ID, name, err) }
	gr, err:=img.Grid()
	if err!=nil { return nil, err }

	f:=&Field{Name: name, Encoding: EncodingFloat32, Gain: 1, Grid: gr, header: img.Header}
	if img.Bitpix==16 && img.Bzero==32768 && img.Bscale==1 {
		f.Encoding=EncodingUint16
	}
	if v, ok:=f.header.Number("GAIN"); ok { f.Gain=v }
	if v, ok:=f.header.Number("OFFSET"); ok { f.Offset=v }
	delete(f.header.Floats, "GAIN");   delete(f.header.Ints, "GAIN")
	delete(f.header.Floats, "OFFSET"); delete(f.header.Ints, "OFFSET")
	return f, nil
}

// Overwrites an existing field
func (g *Granule) WriteField(f *Field) error {
	if !g.HasField(f.Name) {
		return fmt.Errorf("%d: field %s does not exist", g.ID, f.Name)
	}
	return g.writeField(f)
}

// Creates a new field, replacing an existing one with a warning
func (g *Granule) Create(f *Field) error {
	if g.HasField(f.Name) {
		fmt.Fprintf(g.Log, "%d: Warning: replacing existing field %s\n", g.ID, f.Name)
	}
	return g.writeField(f)
}

func (g *Granule) writeField(f *Field) error {
	p, err:=g.path(f.Name, FieldSuffix)
	if err!=nil { return err }
	if err=os.MkdirAll(filepath.Dir(p), 0755); err!=nil { return fmt.Errorf("%d: %w", g.ID, err) }

	var img *fits.Image
	if f.Encoding==EncodingUint16 {
		img=fits.NewUint16ImageFromGrid(f.Grid)
	} else {
		img=fits.NewImageFromGrid(f.Grid)
	}
	img.ID, img.FileName=g.ID, p
	if f.header.Floats!=nil { img.Header=f.header.Clone() }
	img.Header.Floats["GAIN"], img.Header.Floats["OFFSET"]=f.Gain, f.Offset

	// write to a temporary file first, so readers never see partial fields
	tmp:=p+".tmp"
	if err=img.WriteFile(tmp); err!=nil { 
		os.Remove(tmp)
		return fmt.Errorf("%d: writing field %s: %w", g.ID, f.Name, err) 
	}
	if err=os.Rename(tmp, p); err!=nil { return fmt.Errorf("%d: %w", g.ID, err) }
	return nil
}

// Creates the granule directory if necessary and opens it
func New(dir string, id int, log io.Writer) (*Granule, error) {
	if err:=os.MkdirAll(dir, 0755); err!=nil {
		return nil, fmt.Errorf("%d: %w", id, err)
	}
	return Open(dir, id, log)
}
