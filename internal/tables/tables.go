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



// Package tables holds the fixed VIIRS M-band scan geometry: swath width,
// detectors per scan, column break points and the detector row offsets that
// put each scan into latitude order.
package tables

// Sensor geometry
const (
	Width     = 3200  // Swath width in pixels, across track
	Detectors = 16    // Detector rows per scan
	Segments  = 11    // Column segments per swath half
	Center    = Width/2
)

// Default column break points for the left half of the swath. Segment i covers
// columns [BreakPoints[i-1], BreakPoints[i]). The right half is mirrored.
var BreakPoints = [Segments]int{5, 87, 170, 358, 567, 720, 850, 997, 1120, 1275, 1600}

// Row offsets indexed by [detector][segment]. Adding the offset to a row index yields
// the source row which belongs at that position in latitude order.
type Offsets [Detectors][Segments]int

// Offsets for the first scan of a swath
var First = Offsets{
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 8,  8,  8,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 8, -1, -1,  7,  0,  0,  0,  0,  0,  0, 0},
	{-2,  7,  7, -1,  6,  0,  0,  0,  0,  0, 0},
	{ 7, -2, -2,  6, -1,  5,  0,  0,  0,  0, 0},
	{-3,  6,  6, -2,  5, -1,  4,  0,  0,  0, 0},
	{ 6, -3, -3,  5, -2,  4, -1,  3,  0,  0, 0},
	{-4,  5,  5, -3,  4, -2,  3, -1,  2,  0, 0},
	{ 5, -4, -4,  4, -3,  3, -2,  2, -1,  1, 0},
}

// Offsets for scans in the middle of a swath
var Mid = Offsets{
	{ -5,  4,  4, -4,  3, -3,  2, -2,  1, -1, 0},
	{  4, -5, -5,  3, -4,  2, -3,  1, -2,  0, 0},
	{ -6,  3,  3, -5,  2, -4,  1, -3,  0,  0, 0},
	{  3, -6, -6,  2, -5,  1, -4,  0,  0,  0, 0},
	{ -7,  2,  2, -6,  1, -5,  0,  0,  0,  0, 0},
	{ 11, -7, -7,  1, -6,  0,  0,  0,  0,  0, 0},
	{  1,  1,  1, -7,  0,  0,  0,  0,  0,  0, 0},
	{ -9,  9, -8,  0,  0,  0,  0,  0,  0,  0, 0},
	{  9, -9,  8,  0,  0,  0,  0,  0,  0,  0, 0},
	{ -1, -1, -1,  7,  0,  0,  0,  0,  0,  0, 0},
	{-11,  7,  7, -1,  6,  0,  0,  0,  0,  0, 0},
	{  7, -2, -2,  6, -1,  5,  0,  0,  0,  0, 0},
	{ -3,  6,  6, -2,  5, -1,  4,  0,  0,  0, 0},
	{  6, -3, -3,  5, -2,  4, -1,  3,  0,  0, 0},
	{ -4,  5,  5, -3,  4, -2,  3, -1,  2,  0, 0},
	{  5, -4, -4,  4, -3,  3, -2,  2, -1,  1, 0},
}

// Offsets for the last scan of a swath
var Last = Offsets{
	{-5,  4,  4, -4,  3, -3,  2, -2,  1, -1, 0},
	{ 4, -5, -5,  3, -4,  2, -3,  1, -2,  0, 0},
	{-6,  3,  3, -5,  2, -4,  1, -3,  0,  0, 0},
	{ 3, -6, -6,  2, -5,  1, -4,  0,  0,  0, 0},
	{-7,  2,  2, -6,  1, -5,  0,  0,  0,  0, 0},
	{ 2, -7, -7,  1, -6,  0,  0,  0,  0,  0, 0},
	{-8,  1,  1, -7,  0,  0,  0,  0,  0,  0, 0},
	{-8, -8, -8,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
	{ 0,  0,  0,  0,  0,  0,  0,  0,  0,  0, 0},
}

// Returns the offset table for the given detector row of a swath with the given
// height. A single-scan swath is both first and last scan; its first half of
// detectors follows the first-scan table and its second half the last-scan table.
func For(row, height int) *Offsets {
	scan, scans:=row/Detectors, height/Detectors
	switch {
	case scans==1:
		if row%Detectors<Detectors/2 { return &First }
		return &Last
	case scan==0:
		return &First
	case scan==scans-1:
		return &Last
	default:
		return &Mid
	}
}
