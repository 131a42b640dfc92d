// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// Strategy selects how Huffman coding tables are assigned to 50 symbol
// groups. Clusters == 0 selects a single table over the whole block
// (emitted twice, since the format requires at least two tables);
// otherwise Clusters tables in [2,6] are derived by k-means clustering
// over the per-group frequency vectors with the given number of Lloyd
// iterations.
type Strategy struct {
	Clusters   int
	Iterations int
}

// symbolStats computes the per-table frequency vectors and the selector
// assignment for the symbol stream. The vectors cover the alphabet
// without the end of block symbol (alphaSize entries); the coding layer
// appends it. There is always one selector per 50 symbol group plus the
// group holding the end of block symbol.
func symbolStats(syms []uint16, alphaSize int, s Strategy) (freqs [][]int, selectors []uint8) {
	numGroups := len(syms)/groupSize + 1

	if s.Clusters == 0 {
		table := make([]int, alphaSize)
		for _, v := range syms {
			table[v]++
		}
		return [][]int{table, table}, make([]uint8, numGroups)
	}

	groups := make([][]int, 0, numGroups)
	current := make([]int, alphaSize)
	count := 0
	for _, v := range syms {
		current[v]++
		count++
		if count == groupSize {
			groups = append(groups, current)
			current = make([]int, alphaSize)
			count = 0
		}
	}
	// The final, possibly empty, group holds the end of block symbol.
	groups = append(groups, current)

	result := kMeans(groups, alphaSize, s.Clusters, s.Iterations)
	return result.means, result.assignments
}
