// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "sort"

// Length limited Huffman code construction via the coin collector
// formulation of Package-Merge. Every symbol contributes one coin of
// its weight at each denomination 2^-1 .. 2^-limit. Starting at the
// smallest denomination, coins are paired by ascending weight into
// packages of the next coarser denomination and merged with that
// layer's own coins. The lowest weight n-1 packages of the final layer
// are taken and each symbol's code length is the number of its coins
// that participate.
//
// The packages are kept as a flat arena of two-child nodes and
// flattened by depth first search at the end.

type pmNode struct {
	weight int
	// leaf is the weight index for an atomic coin, or -1 for a package
	// with children left and right.
	leaf        int
	left, right int
}

// packageMergeLengths returns the code length for each weight. The
// weights must be pairwise distinct and len(weights) >= 2.
func packageMergeLengths(weights []int, limit int) []uint8 {
	arena := make([]pmNode, 0, 4*len(weights)*limit)
	newLeaf := func(w, idx int) int {
		arena = append(arena, pmNode{weight: w, leaf: idx})
		return len(arena) - 1
	}
	newPackage := func(left, right int) int {
		arena = append(arena, pmNode{
			weight: arena[left].weight + arena[right].weight,
			leaf:   -1,
			left:   left,
			right:  right,
		})
		return len(arena) - 1
	}

	var carry, layer []int
	for exp := limit; exp >= 0; exp-- {
		layer = layer[:0]
		if exp >= 1 {
			for idx, w := range weights {
				layer = append(layer, newLeaf(w, idx))
			}
		}
		layer = append(layer, carry...)
		sort.SliceStable(layer, func(i, j int) bool {
			return arena[layer[i]].weight < arena[layer[j]].weight
		})
		carry = carry[:0]
		for i := 0; i+1 < len(layer); i += 2 {
			carry = append(carry, newPackage(layer[i], layer[i+1]))
		}
	}

	lengths := make([]uint8, len(weights))
	take := len(weights) - 1
	var flatten func(node int)
	flatten = func(node int) {
		if n := arena[node]; n.leaf >= 0 {
			lengths[n.leaf]++
		} else {
			flatten(n.left)
			flatten(n.right)
		}
	}
	for _, node := range layer[:take] {
		flatten(node)
	}
	return lengths
}
