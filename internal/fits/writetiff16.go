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
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// Write a grayscale FITS image to 16-bit TIFF, using the given min, max and gamma.
func (f *Image) WriteMonoTIFF16ToFile(fileName string, min, max, gamma float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err = f.WriteMonoTIFF16(writer, min, max, gamma); err != nil {
		return err
	}
	return writer.Flush()
}

// Write a grayscale FITS image to 16-bit TIFF, using the given min, max and gamma.
func (f *Image) WriteMonoTIFF16(writer io.Writer, min, max, gamma float32) error {
	width, height := f.previewSize()
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := f.Data[y*width : (y+1)*width]
		for x, v := range row {
			gray := normalize(v, min, max, gamma)
			img.SetGray16(x, y, color.Gray16{uint16(gray*65535 + 0.5)})
		}
	}
	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// Returns the preview dimensions, treating a single axis as one row
func (f *Image) previewSize() (width, height int) {
	width, height = int(f.Naxisn[0]), 1
	if len(f.Naxisn) > 1 {
		height = int(f.Naxisn[1])
	}
	return width, height
}

// Maps v linearly from [min,max] to [0,1], clamps and applies gamma. 
// NaNs map to zero.
func normalize(v, min, max, gamma float32) float64 {
	g := float64((v - min) / (max - min))
	if math.IsNaN(g) || g < 0 {
		g = 0
	} else if g > 1 {
		g = 1
	}
	if gamma != 1 && gamma > 0 {
		g = math.Pow(g, 1/float64(gamma))
	}
	return g
}
