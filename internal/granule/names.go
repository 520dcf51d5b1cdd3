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
	"fmt"
	"path/filepath"
	"strings"
)

// Geolocation field names
const (
	LatitudeName   = "All_Data/VIIRS-MOD-GEO_All/Latitude"
	LongitudeName  = "All_Data/VIIRS-MOD-GEO_All/Longitude"
	TCLatitudeName = "All_Data/VIIRS-MOD-GEO-TC_All/Latitude"
	TCLongitudeName= "All_Data/VIIRS-MOD-GEO-TC_All/Longitude"

	GeoAttrName    = "Resampling"  // attribute set on resampled geolocation fields
)

// Kind of granule, derived from the file name
type FileType int

const (
	FileUnknown FileType = iota
	FileACSPO
	FileGHRSST
	FileGMODO
	FileGMTCO
)

var fileTypeNames=[]string{"unknown", "ACSPO", "L2P_GHRSST", "GMODO", "GMTCO"}

func (t FileType) String() string {
	if t<0 || int(t)>=len(fileTypeNames) { return fmt.Sprintf("FileType(%d)", int(t)) }
	return fileTypeNames[t]
}

// Offset of the L2P_GHRSST marker in GHRSST granule names
const ghrsstOffset=20

// Determines the file type from the base name of the given path
func FileTypeOf(path string) FileType {
	p:=filepath.Base(filepath.Clean(path))
	switch {
	case len(p)>ghrsstOffset && strings.HasPrefix(p[ghrsstOffset:], "L2P_GHRSST"): return FileGHRSST
	case strings.HasPrefix(p, "ACSPO_"):     return FileACSPO
	case strings.HasPrefix(p, "GMODO_npp_"): return FileGMODO
	case strings.HasPrefix(p, "GMTCO_npp_"): return FileGMTCO
	}
	return FileUnknown
}

// Extracts the M-band number from a band granule name. The last occurrence of
// SVM followed by two digits gives the band, which must be in 1..16.
func BandFromFileName(name string) (int, error) {
	for i:=len(name)-6; i>=0; i-- {
		if name[i:i+3]!="SVM" { continue }
		d1, d2:=name[i+3], name[i+4]
		if d1<'0' || d1>'9' || d2<'0' || d2>'9' { break }
		band:=int(d1-'0')*10+int(d2-'0')
		if band<1 || band>16 { return band, fmt.Errorf("invalid band %d in %s", band, name) }
		return band, nil
	}
	return 0, fmt.Errorf("no band SVMxx in %s", name)
}

// Names of the datasets belonging to one M-band
type BandNames struct {
	Band      int
	Field     string  // field to resample
	AttrGroup string  // group holding the resampling attribute
	AttrName  string  
	Reordered string  // optional reordered copy of the original field
	Encoding  Encoding
}

// Returns dataset names for the given band. Bands up to M11 hold reflectances,
// the others brightness temperatures. M13 is stored as float, all others as
// scaled 16-bit codes
func NamesForBand(band int) BandNames {
	quantity:="Reflectance"
	if band>=12 { quantity="BrightnessTemperature" }
	enc:=EncodingUint16
	if band==13 { enc=EncodingFloat32 }
	return BandNames{
		Band:      band,
		Field:     fmt.Sprintf("All_Data/VIIRS-M%d-SDR_All/%s", band, quantity),
		AttrGroup: fmt.Sprintf("Data_Products/VIIRS-M%d-SDR/VIIRS-M%d-SDR_Aggr", band, band),
		AttrName:  "Resampling"+quantity,
		Reordered: fmt.Sprintf("All_Data/VIIRS-M%d-SDR_All/Reordered%s", band, quantity),
		Encoding:  enc,
	}
}

// Fields reordered by the reorder-only mode, latitude field first
var ReorderPresets=map[FileType][]string{
	FileACSPO:  {"latitude", "sst_regression", "longitude", "acspo_mask"},
	FileGHRSST: {"lat", "sea_surface_temperature", "brightness_temperature_12um", "lon", "l2p_flags"},
}
