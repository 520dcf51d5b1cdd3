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


// Package stats summarizes granule fields.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Maximum number of values sampled for quantile estimates
const NumSamples = 128*1024

// Number of histogram bins for the mode estimate
const modeBins = 256

// Summary statistics of a field
type Summary struct {
	Count    int      // total number of values
	Valid    int      // values within the valid range
	NaN      int      // NaN values
	Sentinel int      // values equal to the deletion zone sentinel

	Min      float32  // of the valid values
	Max      float32
	Mean     float32
	StdDev   float32
	Median   float32  // approximate, from at most NumSamples random valid values
	Mode     float32  // peak of a normal distribution fitted to the histogram
}

// Pretty print summary to string
func (s *Summary) String() string {
	return fmt.Sprintf("Count %d Valid %d NaN %d Sentinel %d Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g Mode %.6g", 
		s.Count, s.Valid, s.NaN, s.Sentinel, s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Mode)
}

// Pretty print summary to CSV header
func (s *Summary) ToCSVHeader() string {
	return "Count,Valid,NaN,Sentinel,Min,Max,Mean,StdDev,Median,Mode"
}

// Pretty print summary to CSV line item 
func (s *Summary) ToCSVLine() string {
	return fmt.Sprintf("%d,%d,%d,%d,%.6g,%.6g,%.6g,%.6g,%.6g,%.6g", 
		s.Count, s.Valid, s.NaN, s.Sentinel, s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Mode)
}

// Summarizes data. valid selects the values entering min, max, mean, 
// standard deviation, median and mode. A nil valid accepts all non-NaN values
func Summarize(data []float32, valid func(float32) bool, sentinel float32) *Summary {
	s:=&Summary{Count: len(data)}
	vals:=make([]float64, 0, len(data))
	for _, d:=range data {
		switch {
		case math.IsNaN(float64(d)):  s.NaN++; continue
		case d==sentinel:             s.Sentinel++
		}
		if valid!=nil && !valid(d) { continue }
		if valid==nil && d==sentinel { continue }
		vals=append(vals, float64(d))
	}
	s.Valid=len(vals)
	if s.Valid==0 { return s }

	s.Min, s.Max=float32(floats.Min(vals)), float32(floats.Max(vals))
	mean, std:=stat.MeanStdDev(vals, nil)
	s.Mean, s.StdDev=float32(mean), float32(std)
	if s.Valid==1 { s.StdDev=0 }

	sample:=sampleSorted(vals, NumSamples)
	s.Median=float32(stat.Quantile(0.5, stat.Empirical, sample, nil))
	s.Mode=s.Median
	if s.Max>s.Min {
		bins:=make([]int32, modeBins)
		vals32:=make([]float32, len(sample))
		for i, v:=range sample { vals32[i]=float32(v) }
		Histogram(vals32, s.Min, s.Max, bins)
		if mode, _, err:=GetModeStdDevFromHistogram(bins, s.Min, s.Max); err==nil && mode>=s.Min && mode<=s.Max {
			s.Mode=mode
		}
	}
	return s
}

// Returns low and high clip points for previews, as the given quantiles of 
// the values passing valid
func ClipPoints(data []float32, valid func(float32) bool, lowQ, highQ float64) (low, high float32) {
	vals:=make([]float64, 0, len(data))
	for _, d:=range data {
		if math.IsNaN(float64(d)) || (valid!=nil && !valid(d)) { continue }
		vals=append(vals, float64(d))
	}
	if len(vals)==0 { return 0, 1 }
	sample:=sampleSorted(vals, NumSamples)
	low =float32(stat.Quantile(lowQ,  stat.Empirical, sample, nil))
	high=float32(stat.Quantile(highQ, stat.Empirical, sample, nil))
	if !(high>low) { high=low+1 }
	return low, high
}

// Returns a sorted random sample of at most n values, or a sorted copy of all 
// values if there are no more than n
func sampleSorted(vals []float64, n int) []float64 {
	var sample []float64
	if len(vals)<=n {
		sample=append([]float64(nil), vals...)
	} else {
		rng:=fastrand.RNG{}
		sample=make([]float64, n)
		max:=uint32(len(vals))
		for i:=range sample {
			sample[i]=vals[rng.Uint32n(max)]
		}
	}
	sort.Float64s(sample)
	return sample
}
