// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import (
	"hash/crc32"
	"math/bits"
)

// The CRC-32 computation in bzip2 treats bytes as having their bits in
// big-endian order, that is, the MSB is read before the LSB. The
// standard library CRC-32 IEEE implementation can be used by bit
// reversing its inputs and outputs.

// UpdateCRC returns the result of adding the bytes in buf to crc. The
// zero value of crc is the correct initial state.
func UpdateCRC(crc uint32, buf []byte) uint32 {
	cval := bits.Reverse32(crc)
	var arr [4096]byte
	for len(buf) > 0 {
		n := copy(arr[:], buf)
		buf = buf[n:]
		for i, b := range arr[:n] {
			arr[i] = bits.Reverse8(b)
		}
		cval = crc32.Update(cval, crc32.IEEETable, arr[:n])
	}
	return bits.Reverse32(cval)
}

// ChecksumCRC returns the bzip2 CRC-32 of buf.
func ChecksumCRC(buf []byte) uint32 {
	return UpdateCRC(0, buf)
}

// CombineCRC folds a block CRC into the running stream CRC.
func CombineCRC(streamCRC, blockCRC uint32) uint32 {
	return (streamCRC<<1 | streamCRC>>31) ^ blockCRC
}
