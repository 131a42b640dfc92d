// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "github.com/cosnicolaou/gbzip2/internal/bitio"

// The set of byte values used in a block is transmitted as a two-level
// 16x16 bitmap: a 16 bit region map with one bit per block of 16 byte
// values, followed by a 16 bit detail map for every used region.

func writeSymbolMap(bw *bitio.Writer, used []byte) {
	var region uint16
	var details [16]uint16
	for _, b := range used {
		region |= 1 << (15 - b>>4)
		details[b>>4] |= 1 << (15 - b&0xf)
	}
	bw.WriteBits(uint64(region), 16)
	for _, d := range details {
		if d != 0 {
			bw.WriteBits(uint64(d), 16)
		}
	}
}

func readSymbolMap(br *bitio.Reader) []byte {
	region := br.ReadBits(16)
	var used []byte
	for i := 0; i < 16; i++ {
		if region&(1<<(15-i)) == 0 {
			continue
		}
		detail := br.ReadBits(16)
		for j := 0; j < 16; j++ {
			if detail&(1<<(15-j)) != 0 {
				used = append(used, byte(16*i+j))
			}
		}
	}
	return used
}
