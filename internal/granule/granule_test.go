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
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlnoga/viirsresam/internal/fits"
	"github.com/mlnoga/viirsresam/internal/grid"
)

func TestBandFromFileName(t *testing.T) {
	cases:=[]struct{ name string; band int; ok bool }{
		{"SVM15_npp_d20120101_t0000000_e0001000_b00001_c0_noaa_ops.h5", 15, true},
		{"/data/in/SVM05_npp_d20120101.h5", 5, true},
		{"SVM01_x_SVM12_npp.h5", 12, true},
		{"SVM17_npp_d20120101.h5", 17, false},
		{"SVM00_npp_d20120101.h5", 0, false},
		{"GMODO_npp_d20120101.h5", 0, false},
		{"SVM1", 0, false},
	}
	for _, c:=range cases {
		band, err:=BandFromFileName(c.name)
		if (err==nil)!=c.ok || (c.ok && band!=c.band) {
			t.Errorf("BandFromFileName(%s)=%d,%v; want %d ok=%v", c.name, band, err, c.band, c.ok)
		}
	}
}

func TestFileTypeOf(t *testing.T) {
	cases:=[]struct{ path string; want FileType }{
		{"GMODO_npp_d20120101_t0000000.h5", FileGMODO},
		{"/in/GMTCO_npp_d20120101_t0000000.h5", FileGMTCO},
		{"ACSPO_V2.30_NPP_VIIRS_2012-01-01_0000-0010_20120101.000000.nc", FileACSPO},
		{"20150101000000-OSPO-L2P_GHRSST-SSTsubskin-VIIRS_NPP-ACSPO_V2.40-v02.0-fv01.0.nc", FileGHRSST},
		{"dir/20150101000000-OSPO-L2P_GHRSST/", FileGHRSST},
		{"SVM15_npp_d20120101.h5", FileUnknown},
		{"L2P_GHRSST", FileUnknown},
	}
	for _, c:=range cases {
		if got:=FileTypeOf(c.path); got!=c.want {
			t.Errorf("FileTypeOf(%s)=%v; want %v", c.path, got, c.want)
		}
	}
}

func TestNamesForBand(t *testing.T) {
	n:=NamesForBand(5)
	if n.Field!="All_Data/VIIRS-M5-SDR_All/Reflectance" || n.AttrName!="ResamplingReflectance" || n.Encoding!=EncodingUint16 {
		t.Errorf("band 5 names %+v", n)
	}
	n=NamesForBand(13)
	if n.Field!="All_Data/VIIRS-M13-SDR_All/BrightnessTemperature" || n.Encoding!=EncodingFloat32 {
		t.Errorf("band 13 names %+v", n)
	}
	n=NamesForBand(15)
	if n.AttrGroup!="Data_Products/VIIRS-M15-SDR/VIIRS-M15-SDR_Aggr" || n.Reordered!="All_Data/VIIRS-M15-SDR_All/ReorderedBrightnessTemperature" || n.Encoding!=EncodingUint16 {
		t.Errorf("band 15 names %+v", n)
	}
}

func TestFieldStore(t *testing.T) {
	g, err:=New(filepath.Join(t.TempDir(), "SVM15_npp_test.h5"), 1, io.Discard)
	if err!=nil { t.Fatalf("new: %v", err) }
	name:=NamesForBand(15).Field

	codes:=grid.FromData(4, 2, []float32{0, 1, 1000, 65535, FillMiss, FillOnboardPT, 42, 65000})
	f:=NewField(name, EncodingUint16, codes)
	f.Gain, f.Offset=0.0025, 203
	if err:=g.WriteField(f); err==nil { t.Errorf("write of missing field succeeded; want error") }
	if err:=g.Create(f); err!=nil { t.Fatalf("create: %v", err) }
	if !g.HasField(name) { t.Fatalf("field %s missing after create", name) }

	r, err:=g.ReadField(name)
	if err!=nil { t.Fatalf("read: %v", err) }
	if r.Encoding!=EncodingUint16 || r.Gain!=0.0025 || r.Offset!=203 {
		t.Errorf("read encoding %v gain %v offset %v; want uint16 0.0025 203", r.Encoding, r.Gain, r.Offset)
	}
	for i, c:=range codes.Data {
		if r.Grid.Data[i]!=c { t.Errorf("code[%d]=%v; want %v", i, r.Grid.Data[i], c) }
	}

	r.Grid.Data[2]=1001
	if err:=g.WriteField(r); err!=nil { t.Fatalf("write: %v", err) }
	r2, err:=g.ReadField(name)
	if err!=nil { t.Fatalf("reread: %v", err) }
	if r2.Grid.Data[2]!=1001 || r2.Gain!=0.0025 { t.Errorf("reread code %v gain %v; want 1001 0.0025", r2.Grid.Data[2], r2.Gain) }

	lat:=NewField(LatitudeName, EncodingFloat32, grid.FromData(2, 1, []float32{45.5, -12.25}))
	if err:=g.Create(lat); err!=nil { t.Fatalf("create lat: %v", err) }
	names, err:=g.Fields()
	if err!=nil { t.Fatalf("fields: %v", err) }
	if len(names)!=2 || names[0]!=name || names[1]!=LatitudeName {
		t.Errorf("fields %v; want [%s %s]", names, name, LatitudeName)
	}
}

func TestFieldNamesStayInside(t *testing.T) {
	g, err:=New(t.TempDir(), 2, io.Discard)
	if err!=nil { t.Fatalf("new: %v", err) }
	for _, n:=range []string{"../escape", "a/../../b", "", "/"} {
		if err:=g.Create(NewField(n, EncodingFloat32, grid.New[float32](1, 1))); err==nil {
			t.Errorf("create %q succeeded; want error", n)
		}
	}
}

func TestReadFieldRejectsThreeAxes(t *testing.T) {
	dir:=t.TempDir()
	g, err:=New(dir, 3, io.Discard)
	if err!=nil { t.Fatalf("new: %v", err) }
	img:=fits.NewImageFromNaxisn([]int32{2, 2, 3}, nil)
	if err:=img.WriteFile(filepath.Join(dir, "cube"+FieldSuffix)); err!=nil { t.Fatalf("write: %v", err) }
	if _, err:=g.ReadField("cube"); err==nil { t.Errorf("read of 3-axis field succeeded; want error") }
}

func TestAttributes(t *testing.T) {
	dir:=t.TempDir()
	g, err:=New(dir, 4, io.Discard)
	if err!=nil { t.Fatalf("new: %v", err) }
	names:=NamesForBand(15)

	if _, ok, err:=g.ReadAttribute(names.AttrGroup, names.AttrName); ok || err!=nil {
		t.Errorf("attribute present before writing: ok=%v err=%v", ok, err)
	}
	already, err:=g.WriteAttribute(names.AttrGroup, names.AttrName, 1)
	if err!=nil || already { t.Errorf("first write already=%v err=%v; want false nil", already, err) }
	already, err=g.WriteAttribute(names.AttrGroup, names.AttrName, 1)
	if err!=nil || !already { t.Errorf("second write already=%v err=%v; want true nil", already, err) }
	if _, err:=g.WriteAttribute(names.AttrGroup, "Other", 2.5); err!=nil { t.Fatalf("write other: %v", err) }

	v, ok, err:=g.ReadAttribute(names.AttrGroup, names.AttrName)
	if err!=nil || !ok || v!=1 { t.Errorf("read %v,%v,%v; want 1 true nil", v, ok, err) }
	attrs, err:=g.ReadAttributes(names.AttrGroup)
	if err!=nil || len(attrs)!=2 || attrs["Other"]!=2.5 { t.Errorf("attributes %v, %v", attrs, err) }

	if _, err:=os.Stat(filepath.Join(dir, filepath.FromSlash(names.AttrGroup)+AttrSuffix)); err!=nil {
		t.Errorf("sidecar missing: %v", err)
	}
}

func TestDecodeUint16(t *testing.T) {
	f:=NewField("x", EncodingUint16, grid.FromData(5, 1, []float32{100, FillMiss, FillOnboardPT, FillElint, 0}))
	f.Gain, f.Offset=0.5, 100
	d:=f.Decode()
	want:=[]float32{150, float32(math.NaN()), float32(math.NaN()), FillElint*0.5+100, 100}
	for i, w:=range want {
		got:=d.Data[i]
		if math.IsNaN(float64(w)) {
			if !math.IsNaN(float64(got)) { t.Errorf("decoded[%d]=%v; want NaN", i, got) }
		} else if got!=w {
			t.Errorf("decoded[%d]=%v; want %v", i, got, w)
		}
	}
	if s:=f.Sentinel(DefaultDeletion); s!=FillOnboardPT*0.5+100 { t.Errorf("sentinel %v; want %v", s, FillOnboardPT*0.5+100) }
}

func TestEncodeUint16(t *testing.T) {
	f:=NewField("x", EncodingUint16, nil)
	f.Gain, f.Offset=0.01, 100
	vals:=grid.FromData(6, 1, []float32{101, 5, f.Sentinel(DefaultDeletion), float32(math.NaN()), 50, 1000})
	orig:=grid.FromData(6, 1, []float32{100, FillMiss, FillOnboardPT, 200, 300, 400})
	var log bytes.Buffer
	enc, clamped:=f.Encode(vals, orig, DefaultDeletion, 9, &log)
	want:=[]float32{100, FillMiss, FillOnboardPT, 200, 0, 65535}
	for i, w:=range want {
		if enc.Data[i]!=w { t.Errorf("encoded[%d]=%v; want %v", i, enc.Data[i], w) }
	}
	if clamped!=2 { t.Errorf("clamped %d; want 2", clamped) }
	if !strings.Contains(log.String(), "9: Output data out of range") { t.Errorf("log %q; want clamp warning", log.String()) }
}

func TestEncodeFloat(t *testing.T) {
	f:=NewField("x", EncodingFloat32, nil)
	vals:=grid.FromData(4, 1, []float32{1, 2, float32(math.NaN()), 3})
	orig:=grid.FromData(4, 1, []float32{FloatFillMiss, DeletionFloat, 280, FloatFillElint})
	enc, clamped:=f.Encode(vals, orig, DefaultDeletion, 0, io.Discard)
	want:=[]float32{FloatFillMiss, 2, 280, 3}
	for i, w:=range want {
		if enc.Data[i]!=w { t.Errorf("encoded[%d]=%v; want %v", i, enc.Data[i], w) }
	}
	if clamped!=0 { t.Errorf("clamped %d; want 0", clamped) }
}

func TestIsFill(t *testing.T) {
	if IsFillCode(FillElint) || IsFillCode(65527) || !IsFillCode(FillSOUB) || !IsFillCode(FillNA) {
		t.Errorf("uint16 fill classification wrong")
	}
	if IsFillFloat(FloatFillElint) || IsFillFloat(-999) || !IsFillFloat(FloatFillVDNE) {
		t.Errorf("float fill classification wrong")
	}
}

func TestEncodeCustomDeletion(t *testing.T) {
	f:=NewField("x", EncodingUint16, nil)
	f.Gain, f.Offset=0.5, 100
	d:=Deletion{Code: FillMiss, Float: -1}
	if s:=f.Sentinel(d); s!=FillMiss*0.5+100 { t.Errorf("sentinel %v; want %v", s, FillMiss*0.5+100) }
	vals:=grid.FromData(3, 1, []float32{101, 102, 103})
	orig:=grid.FromData(3, 1, []float32{FillMiss, FillOnboardPT, 300})
	enc, _:=f.Encode(vals, orig, d, 0, io.Discard)
	want:=[]float32{2, FillOnboardPT, 6}
	for i, w:=range want {
		if enc.Data[i]!=w { t.Errorf("encoded[%d]=%v; want %v", i, enc.Data[i], w) }
	}
}
