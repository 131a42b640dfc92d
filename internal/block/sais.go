// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// Suffix array construction by induced sorting (SA-IS), after Nong,
// Zhang and Chan. The suffix array covers the text plus an implicit
// sentinel at index n that is smaller than any real symbol, so the
// result is a permutation of [0, n] whose first entry is always n.

const saEmpty = -1

// buildSuffixArray returns the suffix array of bytes, of length
// len(bytes)+1.
func buildSuffixArray(bytes []byte) []int {
	text := make([]int, len(bytes))
	for i, b := range bytes {
		text[i] = int(b)
	}
	return computeSuffixArray(text, 256)
}

func computeSuffixArray(text []int, alphabetSize int) []int {
	types := suffixTypes(text)
	buckets := bucketSizes(text, alphabetSize)
	n := len(text)

	sa := newSuffixArray(n)
	identifyLMS(sa, text, types, buckets)
	inductionSortL(sa, text, types, buckets)
	inductionSortS(sa, text, types, buckets)

	reduced, offsets, reducedAlphabet := reduceProblem(sa, text, types)
	summary := summarySuffixArray(reduced, reducedAlphabet)

	sa = newSuffixArray(n)
	placeLMS(sa, text, buckets, summary, offsets)
	inductionSortL(sa, text, types, buckets)
	inductionSortS(sa, text, types, buckets)
	return sa
}

func newSuffixArray(n int) []int {
	sa := make([]int, n+1)
	for i := range sa {
		sa[i] = saEmpty
	}
	return sa
}

// suffixTypes classifies each position as L (true) or S (false).
// Positions compare against their successor, with ties inheriting the
// successor's type.
func suffixTypes(text []int) []bool {
	n := len(text)
	isL := make([]bool, n+1)
	for i := range isL {
		isL[i] = true
	}
	if n == 0 {
		return isL
	}
	isL[n-1] = true
	for i := n - 2; i >= 0; i-- {
		switch {
		case text[i] < text[i+1]:
			isL[i] = false
		case text[i] == text[i+1]:
			isL[i] = isL[i+1]
		default:
			isL[i] = true
		}
	}
	return isL
}

// isLMS reports whether index is an S position whose predecessor is L.
// The sentinel is placed explicitly by the callers and is never an LMS
// position here.
func isLMS(index int, isL []bool) bool {
	if index == 0 {
		return false
	}
	return !isL[index] && isL[index-1]
}

func bucketSizes(text []int, alphabetSize int) []int {
	sizes := make([]int, alphabetSize)
	for _, c := range text {
		sizes[c]++
	}
	return sizes
}

// Position 0 of the suffix array is reserved for the sentinel, so the
// buckets start at offset 1.
func bucketHeads(sizes []int) []int {
	heads := make([]int, len(sizes))
	offset := 1
	for i, sz := range sizes {
		heads[i] = offset
		offset += sz
	}
	return heads
}

func bucketTails(sizes []int) []int {
	tails := make([]int, len(sizes))
	offset := 1
	for i, sz := range sizes {
		offset += sz
		tails[i] = offset - 1
	}
	return tails
}

func identifyLMS(sa []int, text []int, isL []bool, sizes []int) {
	sa[0] = len(text)
	tails := bucketTails(sizes)
	for i := len(text) - 1; i >= 0; i-- {
		if !isLMS(i, isL) {
			continue
		}
		sa[tails[text[i]]] = i
		tails[text[i]]--
	}
}

func inductionSortL(sa []int, text []int, isL []bool, sizes []int) {
	heads := bucketHeads(sizes)
	for i := 0; i < len(sa); i++ {
		if sa[i] <= 0 {
			continue
		}
		j := sa[i] - 1
		if !isL[j] {
			continue
		}
		sa[heads[text[j]]] = j
		heads[text[j]]++
	}
}

func inductionSortS(sa []int, text []int, isL []bool, sizes []int) {
	tails := bucketTails(sizes)
	for i := len(sa) - 1; i >= 0; i-- {
		if sa[i] <= 0 {
			continue
		}
		j := sa[i] - 1
		if isL[j] {
			continue
		}
		sa[tails[text[j]]] = j
		tails[text[j]]--
	}
}

// reduceProblem names the LMS substrings in suffix array order and
// returns the reduced text (names in position order), the text offset
// of each reduced symbol, and the reduced alphabet size.
func reduceProblem(sa []int, text []int, isL []bool) (reduced, offsets []int, alphabetSize int) {
	names := make([]int, len(text)+1)
	for i := range names {
		names[i] = saEmpty
	}
	current := 0
	count := 1
	names[sa[0]] = 0
	previous := sa[0]
	for _, entry := range sa[1:] {
		if !isLMS(entry, isL) {
			continue
		}
		if !lmsBlocksEqual(text, previous, entry, isL) {
			current++
		}
		previous = entry
		names[entry] = current
		count++
	}
	reduced = make([]int, 0, count)
	offsets = make([]int, 0, count)
	for i, name := range names {
		if name == saEmpty {
			continue
		}
		reduced = append(reduced, name)
		offsets = append(offsets, i)
	}
	return reduced, offsets, current + 1
}

// lmsBlocksEqual compares the LMS substrings starting at the two
// offsets for equality up to and including their terminating LMS
// positions.
func lmsBlocksEqual(text []int, previous, current int, isL []bool) bool {
	n := len(text)
	if previous == n || current == n {
		return false
	}
	if text[previous] != text[current] {
		return false
	}
	for i := 1; i+current < n && i+previous < n; i++ {
		previousLMS := isLMS(previous+i, isL)
		currentLMS := isLMS(current+i, isL)
		if previousLMS && currentLMS {
			return true
		}
		if previousLMS != currentLMS {
			return false
		}
		if text[previous+i] != text[current+i] {
			return false
		}
	}
	return false
}

// summarySuffixArray computes the suffix array of the reduced text,
// directly when every name is unique and by recursion otherwise.
func summarySuffixArray(reduced []int, alphabetSize int) []int {
	if alphabetSize == len(reduced) {
		sa := make([]int, len(reduced)+1)
		sa[0] = len(reduced)
		for i := 1; i < len(reduced); i++ {
			sa[reduced[i]+1] = i
		}
		return sa
	}
	return computeSuffixArray(reduced, alphabetSize)
}

// placeLMS scatters the LMS positions at their bucket tails in reduced
// suffix array order, ready for the final rounds of induction.
func placeLMS(sa []int, text []int, sizes []int, summary []int, offsets []int) {
	sa[0] = len(text)
	tails := bucketTails(sizes)
	for i := len(summary) - 1; i >= 2; i-- {
		charIndex := offsets[summary[i]]
		bucket := text[charIndex]
		sa[tails[bucket]] = charIndex
		tails[bucket]--
	}
}
