// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "sort"

// hcode is a canonical Huffman code, MSB first in the low len bits of
// bits.
type hcode struct {
	bits uint32
	len  uint8
}

// buildLengths computes a code length in [1, maxCodeLen] for every
// symbol of the alphabet given the frequencies of the non-EOB symbols;
// the end of block symbol is appended with frequency zero. Equal
// frequencies are first broken by bumping each tied or lower entry to
// one above its predecessor after a stable sort; Package-Merge's
// bookkeeping requires pairwise distinct weights. The perturbation is
// kept exactly as bzip2 streams produced with it are the compatibility
// target.
func buildLengths(freqs []int) []uint8 {
	numSyms := len(freqs) + 1
	type entry struct {
		sym  int
		freq int
	}
	entries := make([]entry, 0, numSyms)
	for sym, freq := range freqs {
		entries = append(entries, entry{sym: sym, freq: freq})
	}
	entries = append(entries, entry{sym: numSyms - 1, freq: 0}) // EOB

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].freq < entries[j].freq
	})
	for i := 1; i < len(entries); i++ {
		if entries[i-1].freq >= entries[i].freq {
			entries[i].freq = entries[i-1].freq + 1
		}
	}

	weights := make([]int, len(entries))
	for i, e := range entries {
		weights[i] = e.freq
	}
	counts := packageMergeLengths(weights, maxCodeLen)

	lengths := make([]uint8, numSyms)
	for i, e := range entries {
		lengths[e.sym] = counts[i]
	}
	return lengths
}

// assignCodes derives the canonical codes for the given per-symbol
// lengths: entries are ordered by (length, symbol), the first gets the
// all zero code of its length, and each subsequent code is the previous
// plus one, shifted left to the new length.
func assignCodes(lengths []uint8) []hcode {
	order := make([]int, len(lengths))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		si, sj := order[i], order[j]
		if lengths[si] != lengths[sj] {
			return lengths[si] < lengths[sj]
		}
		return si < sj
	})

	codes := make([]hcode, len(lengths))
	code := uint32(0)
	prev := lengths[order[0]]
	codes[order[0]] = hcode{bits: 0, len: prev}
	for _, sym := range order[1:] {
		code++
		next := lengths[sym]
		if next > prev {
			code <<= next - prev
		}
		prev = next
		codes[sym] = hcode{bits: code, len: next}
	}
	return codes
}
