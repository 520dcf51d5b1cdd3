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


// +build amd64

package grid

import (
	"fmt"
	"runtime"
	"github.com/klauspost/cpuid"
)

// Returns the default number of parallel workers: the logical cores reported
// by CPUID, bounded by GOMAXPROCS
func DefaultWorkers() int {
	n:=cpuid.CPU.LogicalCores
	if n<1 { n=runtime.NumCPU() }
	if max:=runtime.GOMAXPROCS(0); n>max { n=max }
	return n
}

// Returns a short description of the CPU for log output
func CPUDescription() string {
	name:=cpuid.CPU.BrandName
	if name=="" { name="unknown CPU" }
	return fmt.Sprintf("%s, %d physical cores, %d logical cores, L2 %d KiB", 
		name, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, cpuid.CPU.Cache.L2/1024)
}
