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



package grid

// Calls fn on consecutive column ranges [lo,hi) which together cover [0,width). 
// Splits the work into 8*workers batches and runs at most workers of them
// concurrently. Returns once all batches have finished.
func ForEachColumnBatch(width, workers int, fn func(lo, hi int)) {
	if workers<1 { workers=DefaultWorkers() }

	numBatches:=8*workers
	batchSize :=(width+numBatches-1)/numBatches
	if batchSize<1 { batchSize=1 }
	sem       :=make(chan bool, workers)
	for lower:=0; lower<width; lower+=batchSize {
		upper:=lower+batchSize
		if upper>width { upper=width }

		sem <- true 
		go func(lower, upper int) {
			defer func() { <-sem }()
			fn(lower, upper)
		}(lower, upper)
	}

	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
}
