// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package block implements the bzip2 per-block compression pipeline and
// its reverse: RLE-1, the Burrows-Wheeler transform via SA-IS over the
// Duval-rotated block, move-to-front, zero run encoding, length-limited
// canonical Huffman codes built with Package-Merge, k-means selection
// of multiple coding tables, and the bit-exact serialization of all of
// the above.
package block

var (
	// FileMagic is the bzip2 file magic number.
	FileMagic = []byte{0x42, 0x5a} // "BZ"
)

const (
	// BlockMagic is the magic number for each bzip2 data block.
	BlockMagic = 0x314159265359
	// EOSMagic is the magic number for the bzip2 end of stream block.
	EOSMagic = 0x177245385090

	// MagicBits is the width of the block and end of stream magics.
	MagicBits = 48

	// BlockSize is the post RLE-1 block budget. Only the "9" level
	// (900k) is produced.
	BlockSize = 9 * 100 * 1000

	// Level is the block size digit written in the stream header.
	Level = '9'

	// Huffman coding table symbols switch every 50 symbols.
	groupSize = 50

	// bzip2 requires between 2 and 6 coding tables per block.
	minTables = 2
	maxTables = 6

	// The encoder limits code lengths to 17 bits; the format itself
	// allows up to 20 which is accepted when reading.
	maxCodeLen       = 17
	maxFormatCodeLen = 20

	// Limit on a single decoded zero run, from the bzip2 source. It
	// prevents the repeat count from overflowing.
	maxRepeatCount = 2 * 1024 * 1024
)
