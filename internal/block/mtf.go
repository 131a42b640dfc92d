// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// mtfEncode applies the move-to-front transform over the live alphabet
// of buf. The initial dictionary is the sorted set of bytes present,
// which is also returned for transmission as the symbol map.
func mtfEncode(buf []byte) (encoded []byte, usedSymbols []byte) {
	var present [256]bool
	for _, b := range buf {
		present[b] = true
	}
	var dictArr [256]byte
	dict := dictArr[:0]
	for i, ok := range present {
		if ok {
			dict = append(dict, byte(i))
		}
	}
	usedSymbols = append([]byte(nil), dict...)

	encoded = make([]byte, 0, len(buf))
	for _, val := range buf {
		var idx byte
		for di, dv := range dict {
			if dv == val {
				idx = byte(di)
				break
			}
		}
		copy(dict[1:], dict[:idx])
		dict[0] = val
		encoded = append(encoded, idx)
	}
	return encoded, usedSymbols
}

// mtfDecode inverts the transform using the dictionary reconstructed
// from the symbol map.
func mtfDecode(encoded []byte, dictionary []byte) []byte {
	var dictArr [256]byte
	dict := dictArr[:copy(dictArr[:], dictionary)]

	out := make([]byte, 0, len(encoded))
	for _, idx := range encoded {
		val := dict[idx]
		copy(dict[1:], dict[:idx])
		dict[0] = val
		out = append(out, val)
	}
	return out
}
