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
	"io"
	"os"
	"path/filepath"

	"github.com/mlnoga/viirsresam/internal/fits"
	"github.com/mlnoga/viirsresam/internal/grid"
	"github.com/mlnoga/viirsresam/internal/stats"
)

// Returns a function writing intermediate grids as FITS files named 
// <prefix>_<name>.fits into dir, or nil if dir is empty
func DumpToDir(dir, prefix string, id int, log io.Writer) func(name string, g *grid.Grid[float32]) {
	if dir=="" { return nil }
	return func(name string, g *grid.Grid[float32]) {
		fileName:=filepath.Join(dir, fmt.Sprintf("%s_%s.fits", prefix, name))
		err:=os.MkdirAll(dir, 0755)
		if err==nil {
			img:=fits.NewImageFromGrid(g)
			img.ID, img.FileName=id, fileName
			err=img.WriteFile(fileName)
		}
		if err!=nil {
			fmt.Fprintf(log, "%d: Warning: cannot write debug grid %s: %s\n", id, fileName, err.Error())
		}
	}
}

// Logs summary statistics of a field
func LogSummary(c *Context, id int, name string, data []float32, valid func(float32) bool, sentinel float32) *stats.Summary {
	s:=stats.Summarize(data, valid, sentinel)
	fmt.Fprintf(c.Log, "%d: %s: %v\n", id, name, s)
	return s
}
