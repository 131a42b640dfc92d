// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// The Burrows-Wheeler transform used by bzip2 sorts the rotations of
// the block rather than its suffixes. The block is first rotated at its
// Duval offset (see duval) and its rotations are then ordered by a
// single SA-IS pass over the rotated block concatenated with itself:
// the first n symbols of each suffix starting before n are exactly one
// rotation, so those suffixes sort in rotation order and no sentinel
// appears in the output.

// bwtEncode computes the BWT of buf and the row of the sorted rotation
// matrix holding the original string.
func bwtEncode(buf []byte) (data []byte, origPtr int) {
	n := len(buf)
	if n == 0 {
		return nil, 0
	}
	rotated, shift := rotateDuval(buf)
	doubled := make([]byte, 0, 2*n)
	doubled = append(doubled, rotated...)
	doubled = append(doubled, rotated...)
	sa := buildSuffixArray(doubled)

	data = make([]byte, 0, n)
	target := (n - shift) % n
	rank := 0
	for _, idx := range sa {
		if idx >= n {
			continue
		}
		if idx == 0 {
			data = append(data, rotated[n-1])
		} else {
			data = append(data, rotated[idx-1])
		}
		if idx == target {
			origPtr = rank
		}
		rank++
	}
	return data, origPtr
}

// bwtDecode inverts the transform by following the LF mapping obtained
// from a counting sort of the output, starting at the origPtr row.
func bwtDecode(buf []byte, origPtr int) []byte {
	if len(buf) == 0 {
		return nil
	}

	var c [256]int
	for _, v := range buf {
		c[v]++
	}
	sum := 0
	for i, v := range c[:] {
		sum += v
		c[i] = sum - v
	}

	tt := make([]int, len(buf))
	for i := range buf {
		b := buf[i]
		tt[c[b]] = i
		c[b]++
	}

	out := make([]byte, len(buf))
	tPos := tt[origPtr]
	for i := range out {
		out[i] = buf[tPos]
		tPos = tt[tPos]
	}
	return out
}
