// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "github.com/cosnicolaou/gbzip2/internal/bitio"

// Encode compresses one run length encoded block into a bzip2 block
// bitstream. crc is the checksum of the block's original, pre RLE-1,
// bytes. The returned byte slice is zero padded; nbits is the exact
// size of the bitstream.
func Encode(crc uint32, rle []byte, strategy Strategy) (data []byte, nbits int) {
	bwtData, origPtr := bwtEncode(rle)
	mtfData, usedSymbols := mtfEncode(bwtData)
	syms := zleEncode(mtfData)

	// Alphabet: RUNA, RUNB, one symbol per non-zero MTF index, EOB.
	numSyms := len(usedSymbols) + 2
	eob := uint16(numSyms - 1)

	freqs, selectors := symbolStats(syms, numSyms-1, strategy)
	numTables := len(freqs)

	tables := make([][]hcode, numTables)
	treeLengths := make([][]uint8, numTables)
	for i, f := range freqs {
		lengths := buildLengths(f)
		treeLengths[i] = lengths
		tables[i] = assignCodes(lengths)
	}

	bw := bitio.NewBufferWriter()
	bw.WriteBits(BlockMagic, MagicBits)
	bw.WriteBits(uint64(crc), 32)
	bw.WriteBits(0, 1) // randomized, always false
	bw.WriteBits(uint64(origPtr), 24)
	writeSymbolMap(&bw.Writer, usedSymbols)
	bw.WriteBits(uint64(numTables), 3)
	bw.WriteBits(uint64(len(selectors)), 15)
	writeSelectors(&bw.Writer, selectors, numTables)
	for _, lengths := range treeLengths {
		writeDeltaLengths(&bw.Writer, lengths)
	}

	for i, sym := range syms {
		code := tables[selectors[i/groupSize]][sym]
		bw.WriteBits(uint64(code.bits), uint(code.len))
	}
	eobCode := tables[selectors[len(syms)/groupSize]][eob]
	bw.WriteBits(uint64(eobCode.bits), uint(eobCode.len))

	return bw.Finish()
}
