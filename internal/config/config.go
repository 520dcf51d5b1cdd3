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


// Package config holds the runtime settings of the resampler, stored as YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mlnoga/viirsresam/internal/resam"
)

// Complete configuration
type Config struct {
	Resampling Resampling         `yaml:"resampling"`
	Deletion   Deletion           `yaml:"deletion"`
	Bands      map[int]Band       `yaml:"bands"`
	Geo        Geo                `yaml:"geo"`
	Preview    Preview            `yaml:"preview"`
	Server     Server             `yaml:"server"`
}

// Settings of the resampling pipeline
type Resampling struct {
	Resolution  resam.ResolutionMode `yaml:"resolution"`
	Adaptive    bool                 `yaml:"adaptive"`
	KeepInOrder bool                 `yaml:"keepInOrder"`
	Sorted      bool                 `yaml:"sorted"`
	Extra       bool                 `yaml:"extra"`      // also write the reordered original field
	Workers     int                  `yaml:"workers"`    // 0 for all logical cores
	DebugDir    string               `yaml:"debugDir"`   // intermediate grids go here if set
}

// Values written into the bow-tie deletion zone where no valid neighbor exists
type Deletion struct {
	Code  uint16  `yaml:"code"`
	Float float32 `yaml:"float"`
}

// Per-band settings
type Band struct {
	Range resam.Range `yaml:"range"`
}

// Valid ranges of the geolocation differences in terrain-corrected mode
type Geo struct {
	LatDiff resam.Range `yaml:"latDiff"`
	LonDiff resam.Range `yaml:"lonDiff"`
}

// Preview image settings
type Preview struct {
	TIFF         bool    `yaml:"tiff"`
	JPG          bool    `yaml:"jpg"`
	Quality      int     `yaml:"quality"`
	Gamma        float32 `yaml:"gamma"`
	LowQuantile  float64 `yaml:"lowQuantile"`
	HighQuantile float64 `yaml:"highQuantile"`
}

// REST server settings
type Server struct {
	Port   int    `yaml:"port"`
	Chroot string `yaml:"chroot"`
	Setuid int    `yaml:"setuid"`  // -1 to keep the user id
}

// Returns the default configuration
func Default() *Config {
	bands:=map[int]Band{}
	for b:=1; b<=16; b++ {
		bands[b]=Band{Range: resam.TemperatureRange}
	}
	return &Config{
		Resampling: Resampling{
			Resolution: resam.ResolutionGeodesic,
			Adaptive:   true,
		},
		Deletion: Deletion{Code: resam.CodeSentinel, Float: resam.FloatSentinel},
		Bands:    bands,
		Geo: Geo{
			LatDiff: resam.Range{Min: -90,  Max: 90},
			LonDiff: resam.Range{Min: -180, Max: 180},
		},
		Preview: Preview{
			Quality:      95,
			Gamma:        1,
			LowQuantile:  0.01,
			HighQuantile: 0.99,
		},
		Server: Server{Port: 8080, Setuid: -1},
	}
}

// Returns the valid range for the given band, falling back to brightness 
// temperatures for bands without an entry
func (c *Config) RangeFor(band int) resam.Range {
	if b, ok:=c.Bands[band]; ok { return b.Range }
	return resam.TemperatureRange
}

// Checks the configuration for consistency
func (c *Config) Validate() error {
	for band, b:=range c.Bands {
		if band<1 || band>16 { return fmt.Errorf("invalid band %d", band) }
		if !(b.Range.Min<b.Range.Max) { return fmt.Errorf("band %d: empty range [%g,%g]", band, b.Range.Min, b.Range.Max) }
	}
	if c.Resampling.Workers<0 { return fmt.Errorf("invalid worker count %d", c.Resampling.Workers) }
	p:=c.Preview
	if p.LowQuantile<0 || p.HighQuantile>1 || !(p.LowQuantile<p.HighQuantile) {
		return fmt.Errorf("invalid preview quantiles %g..%g", p.LowQuantile, p.HighQuantile)
	}
	if p.Quality<1 || p.Quality>100 { return fmt.Errorf("invalid JPEG quality %d", p.Quality) }
	return nil
}

// Loads the configuration from the given file. Keys missing in the file keep 
// their defaults; a missing file yields the defaults
func Load(path string) (*Config, error) {
	cfg:=Default()
	data, err:=os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) { return cfg, nil }
	if err!=nil { return nil, fmt.Errorf("error reading config file: %w", err) }

	if err=yaml.Unmarshal(data, cfg); err!=nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err=cfg.Validate(); err!=nil {
		return nil, fmt.Errorf("error in config file %s: %w", path, err)
	}
	return cfg, nil
}

// Saves the configuration to the given file, creating its directory
func Save(cfg *Config, path string) error {
	if dir:=filepath.Dir(path); dir!="." {
		if err:=os.MkdirAll(dir, 0755); err!=nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	data, err:=yaml.Marshal(cfg)
	if err!=nil { return fmt.Errorf("error marshaling config: %w", err) }
	if err=os.WriteFile(path, data, 0644); err!=nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
