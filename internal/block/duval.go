// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// duval returns the start of the last factor of the Lyndon
// factorization of input, which is where its lexicographically smallest
// suffix begins, computed in linear time and constant space by Duval's
// algorithm. This is not always the start of the smallest rotation: for
// "abacabab" it returns 6, while the rotation starting at 4 is smaller.
func duval(input []byte) int {
	finalStart := 0
	n := len(input)
	i := 0
	for i < n {
		j := i + 1
		k := i
		for j < n && input[k] <= input[j] {
			if input[k] < input[j] {
				k = i
			} else {
				k++
			}
			j++
		}
		for i <= k {
			finalStart = i
			i += j - k
		}
	}
	return finalStart
}

// rotateDuval rotates input so that the offset returned by duval becomes
// position 0 and returns that offset.
func rotateDuval(input []byte) ([]byte, int) {
	offset := duval(input)
	buf := make([]byte, 0, len(input))
	buf = append(buf, input[offset:]...)
	buf = append(buf, input[:offset]...)
	return buf, offset
}
