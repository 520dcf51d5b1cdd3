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
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Diverging palette from cold to warm, blended in HCL space
var paletteStops = []string{
	"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8",
	"#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026",
}

// Color for pixels without a value
var noDataColor = color.RGBA{64, 64, 64, 255}

var colormap = buildColormap(paletteStops, 256)

func buildColormap(stops []string, n int) []color.RGBA {
	cols := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			panic(err)
		}
		cols[i] = c
	}
	lut := make([]color.RGBA, n)
	for i := range lut {
		t := float64(i) / float64(n-1) * float64(len(cols)-1)
		lo := int(t)
		if lo >= len(cols)-1 {
			lo = len(cols) - 2
		}
		r, g, b := cols[lo].BlendHcl(cols[lo+1], t-float64(lo)).Clamped().RGB255()
		lut[i] = color.RGBA{r, g, b, 255}
	}
	return lut
}

// Write a FITS image to JPG as a false color map, using the given min and max.
func (f *Image) WriteColormapJPGToFile(fileName string, min, max float32, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err = f.WriteColormapJPG(writer, min, max, quality); err != nil {
		return err
	}
	return writer.Flush()
}

// Write a FITS image to JPG as a false color map, using the given min and max.
// Pixels outside [min,max] are clamped, NaNs are drawn in dark gray.
func (f *Image) WriteColormapJPG(writer io.Writer, min, max float32, quality int) error {
	width, height := f.previewSize()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := f.Data[y*width : (y+1)*width]
		for x, v := range row {
			if math.IsNaN(float64(v)) {
				img.SetRGBA(x, y, noDataColor)
				continue
			}
			i := int(normalize(v, min, max, 1)*float64(len(colormap)-1) + 0.5)
			img.SetRGBA(x, y, colormap[i])
		}
	}
	return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
}
