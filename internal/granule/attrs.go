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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File name suffix of attribute sidecars
const AttrSuffix = ".attrs.yaml"

// Numeric attributes of one group, by name
type Attributes map[string]float64

// Reads all attributes of a group. A group without attributes yields an empty map
func (g *Granule) ReadAttributes(group string) (Attributes, error) {
	p, err:=g.path(group, AttrSuffix)
	if err!=nil { return nil, err }
	attrs:=Attributes{}
	data, err:=os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) { return attrs, nil }
	if err!=nil { return nil, fmt.Errorf("%d: %w", g.ID, err) }
	if err=yaml.Unmarshal(data, &attrs); err!=nil {
		return nil, fmt.Errorf("%d: parsing attributes of %s: %w", g.ID, group, err)
	}
	return attrs, nil
}

// Reads a single attribute
func (g *Granule) ReadAttribute(group, name string) (value float64, ok bool, err error) {
	attrs, err:=g.ReadAttributes(group)
	if err!=nil { return 0, false, err }
	value, ok=attrs[name]
	return value, ok, nil
}

// Sets an attribute. Returns already=true if it was set before
func (g *Granule) WriteAttribute(group, name string, value float64) (already bool, err error) {
	attrs, err:=g.ReadAttributes(group)
	if err!=nil { return false, err }
	_, already=attrs[name]
	attrs[name]=value

	p, _:=g.path(group, AttrSuffix)
	data, err:=yaml.Marshal(attrs)
	if err!=nil { return already, fmt.Errorf("%d: %w", g.ID, err) }
	if err=os.MkdirAll(filepath.Dir(p), 0755); err!=nil { return already, fmt.Errorf("%d: %w", g.ID, err) }
	if err=os.WriteFile(p, data, 0644); err!=nil { return already, fmt.Errorf("%d: %w", g.ID, err) }
	return already, nil
}
