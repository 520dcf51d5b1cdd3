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


package fits

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Writes an in-memory FITS image to a file with given filename.
// Creates/overwrites the file if necessary. Compresses with gzip if the 
// name ends in .gz or .gzip
func (fits *Image) WriteFile(fileName string) error {
	f, err:=os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err!=nil { return err }
	defer f.Close()

	bw:=bufio.NewWriter(f)
	var w io.Writer=bw
	var gz *gzip.Writer
	if lExt:=strings.ToLower(path.Ext(fileName)); lExt==".gz" || lExt==".gzip" {
		gz=gzip.NewWriter(bw)
		w=gz
	}
	if err=fits.Write(w); err!=nil { return err }
	if gz!=nil {
		if err=gz.Close(); err!=nil { return err }
	}
	return bw.Flush()
}


// Writes an in-memory FITS image to an io.Writer, using the image's Bitpix, 
// Bzero and Bscale. Supports BITPIX 16 and -32.
func (fits *Image) Write(f io.Writer) error {
	var bitpixComment string
	switch fits.Bitpix {
	case 16:  bitpixComment="    16-bit integer"
	case -32: bitpixComment="    32-bit floating point"
	default:  return fmt.Errorf("%d: cannot write BITPIX %d", fits.ID, fits.Bitpix)
	}
	bscale:=fits.Bscale
	if bscale==0 { bscale=1 }

	// Build header in string buffer
	sb:=strings.Builder{}
	writeBool(&sb, "SIMPLE", true, "    FITS standard 4.0")
	writeInt32(&sb, "BITPIX", fits.Bitpix, bitpixComment)
	writeInt32(&sb, "NAXIS",  int32(len(fits.Naxisn)), "[1] Number of axis")
	for i:=0; i<len(fits.Naxisn); i++ {
		writeInt32(&sb, fmt.Sprintf("NAXIS%d",i+1), fits.Naxisn[i], "[1] Axis size")
	}
	writeFloat32(&sb, "BZERO",  fits.Bzero, "[1] Zero offset")
	writeFloat32(&sb, "BSCALE", bscale, "[1] Value scaler")
	fits.Header.write(&sb)
	writeEnd(&sb)

	// Pad current header block with spaces if necessary
	if bytesInHeaderBlock:=(sb.Len() % fitsBlockSize); bytesInHeaderBlock>0 {
		sb.WriteString(strings.Repeat(" ", fitsBlockSize-bytesInHeaderBlock))
	}

	// Write header block(s)
	if _, err:=io.WriteString(f, sb.String()); err!=nil { return err }

	// Write payload data and pad the final data block with zeros
	var err error
	if fits.Bitpix==16 {
		err=writeInt16Array(f, fits.Data, fits.Bzero, bscale)
	} else {
		err=writeFloat32Array(f, fits.Data, false)
	}
	if err!=nil { return err }
	bytes:=len(fits.Data)*int(abs32(fits.Bitpix)/8)
	if rest:=bytes%fitsBlockSize; rest>0 {
		_, err=f.Write(make([]byte, fitsBlockSize-rest))
	}
	return err
}

func abs32(i int32) int32 { if i<0 { return -i }; return i }

// Reserved keys which Write emits itself
var reservedKeys=map[string]bool{"SIMPLE":true, "BITPIX":true, "NAXIS":true, "BZERO":true, "BSCALE":true, "END":true}

// Writes the user keys of the header in sorted order, then comments and history
func (h *Header) write(w io.Writer) {
	for _, k:=range userKeys(h.Bools)   { writeBool   (w, k, h.Bools[k],   "") }
	for _, k:=range userKeys(h.Ints)    { writeInt32  (w, k, h.Ints[k],    "") }
	for _, k:=range userKeys(h.Floats)  { writeFloat32(w, k, h.Floats[k],  "") }
	for _, k:=range userKeys(h.Strings) { writeString (w, k, h.Strings[k], "") }
	for _, c:=range h.Comments { writeText(w, "COMMENT", c) }
	for _, c:=range h.History  { writeText(w, "HISTORY", c) }
}

// Returns the sorted keys of m which Write does not emit itself
func userKeys[V any](m map[string]V) []string {
	ks:=make([]string, 0, len(m))
	for k:=range m { 
		if !reservedKeys[k] && !strings.HasPrefix(k, "NAXIS") { ks=append(ks, k) }
	}
	sort.Strings(ks)
	return ks
}


// Writes a FITS header boolean value 
func writeBool(w io.Writer, key string, value bool, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	v:="F"
	if value { v="T" }
	fmt.Fprintf(w, "%-8s= %20s / %-47s", key, v, comment)
}


// Writes a FITS header int32 value 
func writeInt32(w io.Writer, key string, value int32, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	fmt.Fprintf(w, "%-8s= %20d / %-47s", key, value, comment)
}


// Writes a FITS header float32 value. The value always carries a decimal
// point, so it reads back as a float
func writeFloat32(w io.Writer, key string, value float32, comment string) {
	if len(key)>8 { key=key[0:8] }
	if len(comment)>47 { comment=comment[0:47] }
	fmt.Fprintf(w, "%-8s= %20s / %-47s", key, formatFloat(value), comment)
}

func formatFloat(value float32) string {
	s:=strconv.FormatFloat(float64(value), 'G', -1, 32)
	if strings.ContainsAny(s, ".NI") { return s }
	if e:=strings.IndexByte(s, 'E'); e>=0 { return s[:e]+".0"+s[e:] }
	return s+".0"
}


// Writes a FITS header string value with escaping, truncated to a single line
func writeString(w io.Writer, key, value, comment string) {
	if len(key)>8 { key=key[0:8] }
	value=strings.Replace(value, "'", "''", -1)
	if len(value)>68 { value=value[0:68] }
	if len(value)<18 { value+=strings.Repeat(" ", 18-len(value)) }
	line:=fmt.Sprintf("%-8s= '%s' / %s", key, value, comment)
	if len(line)>HeaderLineSize { line=line[:HeaderLineSize] }
	fmt.Fprintf(w, "%-80s", line)
}


// Writes a FITS COMMENT or HISTORY record 
func writeText(w io.Writer, key, text string) {
	if len(text)>72 { text=text[0:72] }
	fmt.Fprintf(w, "%-8s%-72s", key, text)
}


// Writes a FITS header end record 
func writeEnd(w io.Writer) {
	fmt.Fprintf(w, "END%s", strings.Repeat(" ", 80-3))
}

// Writes FITS binary body data in network byte order. 
// Optionally replaces NaNs with zeros for compatibility with other software
func writeFloat32Array(w io.Writer, data []float32, replaceNaNs bool) error {
	buf:=make([]byte,bufLen)

	for block:=0; block<len(data); block+=(bufLen>>2) {
		size:=len(data)-block
		if size>(bufLen>>2) { size=(bufLen>>2) }

		for offset:=0; offset<size; offset++ {
			d:=data[block+offset]
			if replaceNaNs && math.IsNaN(float64(d)) { d=0 }
			binary.BigEndian.PutUint32(buf[offset<<2:], math.Float32bits(d))
		}
		_, err:=w.Write(buf[:(size<<2)])
		if err!=nil { return err }
	}
	return nil
}

// Writes values as 16-bit integers (v-bzero)/bscale in network byte order, 
// rounded and clamped to the int16 range. NaN is written as the lowest code
func writeInt16Array(w io.Writer, data []float32, bzero, bscale float32) error {
	buf:=make([]byte,bufLen)

	for block:=0; block<len(data); block+=(bufLen>>1) {
		size:=len(data)-block
		if size>(bufLen>>1) { size=(bufLen>>1) }

		for offset:=0; offset<size; offset++ {
			v:=math.Round(float64((data[block+offset]-bzero)/bscale))
			if math.IsNaN(v) || v<math.MinInt16 { 
				v=math.MinInt16 
			} else if v>math.MaxInt16 { 
				v=math.MaxInt16 
			}
			binary.BigEndian.PutUint16(buf[offset<<1:], uint16(int16(v)))
		}
		_, err:=w.Write(buf[:(size<<1)])
		if err!=nil { return err }
	}
	return nil
}
