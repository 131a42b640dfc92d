// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "github.com/cosnicolaou/gbzip2/internal/bitio"

// Decode parses one block, whose 48 bit magic has already been
// consumed, and returns the decompressed bytes together with the
// block's transmitted checksum, which has been verified.
func Decode(br *bitio.Reader) ([]byte, uint32, error) {
	wantCRC := uint32(br.ReadBits64(32))
	br.ReadBit() // randomized flag, ignored
	origPtr := br.ReadBits(24)

	usedSymbols := readSymbolMap(br)
	if err := br.Err(); err != nil {
		return nil, 0, err
	}
	if len(usedSymbols) == 0 {
		return nil, 0, FormatError("no symbols in input")
	}

	numTables := br.ReadBits(3)
	if numTables < minTables || numTables > maxTables {
		return nil, 0, FormatError("invalid number of Huffman trees")
	}
	numSelectors := br.ReadBits(15)
	if err := br.Err(); err != nil {
		return nil, 0, err
	}
	if numSelectors == 0 {
		return nil, 0, FormatError("no tree selectors given")
	}
	selectors, err := readSelectors(br, numSelectors, numTables)
	if err != nil {
		return nil, 0, err
	}

	numSyms := len(usedSymbols) + 2
	eob := uint16(numSyms - 1)
	trees := make([]huffmanTree, numTables)
	for i := range trees {
		lengths, err := readDeltaLengths(br, numSyms)
		if err != nil {
			return nil, 0, err
		}
		if trees[i], err = newHuffmanTree(lengths); err != nil {
			return nil, 0, err
		}
	}

	// The coding table can switch every 50 symbols.
	var syms []uint16
	selectorIndex := 0
	tree := &trees[selectors[0]]
	decoded := 0
	for {
		if decoded == groupSize {
			selectorIndex++
			if selectorIndex >= len(selectors) {
				return nil, 0, FormatError("insufficient selector indices for number of symbols")
			}
			tree = &trees[selectors[selectorIndex]]
			decoded = 0
		}
		v, err := tree.Decode(br)
		if err != nil {
			return nil, 0, err
		}
		decoded++
		if v == eob {
			break
		}
		if len(syms) >= BlockSize {
			return nil, 0, FormatError("data exceeds block size")
		}
		syms = append(syms, v)
	}

	mtfData, err := zleDecode(syms)
	if err != nil {
		return nil, 0, err
	}
	if origPtr >= len(mtfData) {
		return nil, 0, FormatError("origPtr out of bounds")
	}

	bwtData := mtfDecode(mtfData, usedSymbols)
	rle := bwtDecode(bwtData, origPtr)
	out := DecodeRLE1(rle)

	if got := ChecksumCRC(out); got != wantCRC {
		return nil, 0, ChecksumError("block checksum mismatch")
	}
	return out, wantCRC, nil
}
