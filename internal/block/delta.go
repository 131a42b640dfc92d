// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "github.com/cosnicolaou/gbzip2/internal/bitio"

// Per-table code lengths are delta encoded: a 5 bit start value
// followed, for each length, by a sequence of two bit adjustments,
// 10 to increment and 11 to decrement, terminated by a zero bit.

func writeDeltaLengths(bw *bitio.Writer, lengths []uint8) {
	current := lengths[0]
	bw.WriteBits(uint64(current), 5)
	for _, l := range lengths {
		for current < l {
			bw.WriteBits(0b10, 2)
			current++
		}
		for current > l {
			bw.WriteBits(0b11, 2)
			current--
		}
		bw.WriteBits(0, 1)
	}
}

func readDeltaLengths(br *bitio.Reader, numSyms int) ([]uint8, error) {
	length := br.ReadBits(5)
	lengths := make([]uint8, numSyms)
	for i := range lengths {
		for {
			if length < 1 || length > maxFormatCodeLen {
				return nil, FormatError("Huffman length out of range")
			}
			if !br.ReadBit() {
				break
			}
			if br.ReadBit() {
				length--
			} else {
				length++
			}
		}
		if err := br.Err(); err != nil {
			return nil, err
		}
		lengths[i] = uint8(length)
	}
	return lengths, nil
}
