// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "math"

type kMeansResult struct {
	// Cluster centers scaled by 10000 so that they can be used directly
	// as integer frequency tables.
	means       [][]int
	assignments []uint8
}

// kMeans runs Lloyd's algorithm over the data points for a fixed number
// of iterations. Initial centers are the evenly spaced points
// data[i*len(data)/clusters]; distance is Euclidean; on equal distance
// the lowest numbered cluster wins.
func kMeans(data [][]int, dimension, clusters, iterations int) kMeansResult {
	centers := make([][]float32, clusters)
	for i := range centers {
		seed := data[i*len(data)/clusters]
		center := make([]float32, dimension)
		for j, v := range seed {
			center[j] = float32(v)
		}
		centers[i] = center
	}

	assignments := make([]uint8, len(data))
	sizes := make([]int, clusters)

	for iter := 0; iter < iterations; iter++ {
		for p, point := range data {
			minAssignment := 0
			minDistance := float32(math.Inf(1))
			for c, center := range centers {
				if d := euclideanDistance(center, point); d < minDistance {
					minDistance = d
					minAssignment = c
				}
			}
			assignments[p] = uint8(minAssignment)
		}

		for i := range centers {
			centers[i] = make([]float32, dimension)
		}
		for i := range sizes {
			sizes[i] = 0
		}
		// Running mean keeps the center representable while points are
		// folded in one at a time.
		for p, point := range data {
			c := assignments[p]
			size := float32(sizes[c])
			center := centers[c]
			for j, v := range point {
				center[j] = (center[j]*size + float32(v)) / (size + 1)
			}
			sizes[c]++
		}
	}

	means := make([][]int, clusters)
	for i, center := range centers {
		mean := make([]int, dimension)
		for j, v := range center {
			mean[j] = int(v * 10000)
		}
		means[i] = mean
	}
	return kMeansResult{means: means, assignments: assignments}
}

func euclideanDistance(center []float32, point []int) float32 {
	var sum float32
	for i, v := range point {
		d := center[i] - float32(v)
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}
