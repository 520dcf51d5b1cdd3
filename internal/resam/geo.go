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



// Package resam resamples VIIRS swaths into latitude order: it monotonizes 
// longitude per column and approximates reordered samples from their sorted
// neighbors with a Gaussian distance weighting.
package resam

import (
	"math"
)

// Mean earth radius in km
const EarthRadius = 6371.0

const degToRad = math.Pi/180

// Great-circle distance in km between two points given in degrees, using the 
// haversine formula
func GeoDist(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2:=lat1*degToRad, lat2*degToRad
	dPhi, dLam:=phi2-phi1, (lon2-lon1)*degToRad
	sPhi, sLam:=math.Sin(dPhi/2), math.Sin(dLam/2)
	a:=sPhi*sPhi + math.Cos(phi1)*math.Cos(phi2)*sLam*sLam
	if a>1 { a=1 }
	return 2*EarthRadius*math.Asin(math.Sqrt(a))
}

// Adds two longitudes in degrees, wrapping the result into (-180,180]
func LonSum(a, b float64) float64 {
	phi1, phi2:=a*degToRad, b*degToRad
	sum:=math.Atan2(math.Sin(phi2)*math.Cos(phi1) + math.Cos(phi2)*math.Sin(phi1),
		            math.Cos(phi2)*math.Cos(phi1) - math.Sin(phi2)*math.Sin(phi1))
	return sum/degToRad
}

// Linear interpolation at x between (x0,y0) and (x1,y1)
func lerp(x0, y0, x1, y1, x float64) float64 {
	lam:=(x-x0)/(x1-x0)
	return (1-lam)*y0 + lam*y1
}

// Linear interpolation of longitudes along the shorter way around the globe.
// The result is wrapped into [-180,180)
func lonLerp(x0, lon0, x1, lon1, x float64) float64 {
	if d:=lon1-lon0; d>180 { 
		lon1-=360 
	} else if d< -180 { 
		lon1+=360 
	}
	return wrapLon(lerp(x0, lon0, x1, lon1, x))
}

// Wraps a longitude into [-180,180)
func wrapLon(lon float64) float64 {
	if lon>=-180 && lon<180 { return lon }
	lon=math.Mod(lon+180, 360)
	if lon<0 { lon+=360 }
	return lon-180
}
