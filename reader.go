// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbzip2

import (
	"fmt"
	"io"

	"github.com/cosnicolaou/gbzip2/internal/bitio"
	"github.com/cosnicolaou/gbzip2/internal/block"
)

// NewReader returns an io.Reader which decompresses bzip2 data from r.
// Concatenated streams are decompressed back to back, as with the
// reference bzip2 tool.
func NewReader(r io.Reader) io.Reader {
	return &reader{br: bitio.NewReader(r)}
}

// NewReaderWithStats returns a reader that will gather statistics.
func NewReaderWithStats(r io.Reader) io.Reader {
	return &reader{br: bitio.NewReader(r), recordStats: true}
}

// Stats contains the offset and checksum information for a decoded
// stream. Offsets are in bits and from the start of the input;
// concatenated streams accumulate into the same Stats.
type Stats struct {
	BlockStartOffsets []uint64 // Offset of each block in bits.
	EndOfStreamOffset uint64   // Offset of the last end of stream marker.
	BlockCRCs         []uint32
	StreamCRC         uint32
}

// StreamStats returns any statistics gathered for this stream.
func StreamStats(r io.Reader) Stats {
	if rd, ok := r.(*reader); ok {
		return rd.stats
	}
	return Stats{}
}

// reader is the decompression state machine: it consumes the stream
// header and then dispatches on the 48 bit marker between block
// headers and the stream footer, decoding one whole block at a time.
type reader struct {
	br        *bitio.Reader
	buf       []byte
	streamCRC uint32
	setupDone bool
	eof       bool
	err       error

	recordStats bool
	stats       Stats
}

// setup parses a stream header. The two magic bytes have already been
// validated when needMagic is false.
func (r *reader) setup(needMagic bool) error {
	br := r.br
	if needMagic {
		magic := br.ReadBytes(2)
		if err := br.Err(); err != nil {
			return err
		}
		if magic[0] != block.FileMagic[0] || magic[1] != block.FileMagic[1] {
			return block.FormatError(fmt.Sprintf("wrong file magic: %x", magic))
		}
	}
	if v := br.ReadBits(8); v != 'h' {
		if err := br.Err(); err != nil {
			return err
		}
		return block.FormatError("non-Huffman entropy encoding")
	}
	if level := br.ReadBits(8); level < '1' || level > '9' {
		if err := br.Err(); err != nil {
			return err
		}
		return block.FormatError("invalid compression level")
	}
	r.streamCRC = 0
	return br.Err()
}

// Read implements io.Reader.
func (r *reader) Read(p []byte) (int, error) {
	for {
		if len(r.buf) > 0 {
			n := copy(p, r.buf)
			r.buf = r.buf[n:]
			return n, nil
		}
		if r.eof {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, r.err
		}
		if err := r.advance(); err != nil {
			r.err = err
			return 0, err
		}
		if len(p) == 0 {
			return 0, nil
		}
	}
}

// advance decodes the next block into r.buf, or handles a stream
// footer, setting r.eof at the end of the input.
func (r *reader) advance() error {
	br := r.br
	if !r.setupDone {
		if err := r.setup(true); err != nil {
			return err
		}
		r.setupDone = true
	}
	switch magic := br.ReadBits64(block.MagicBits); {
	case br.Err() != nil:
		return br.Err()

	case magic == block.BlockMagic:
		offset := br.BitsRead() - block.MagicBits
		data, crc, err := block.Decode(br)
		if err != nil {
			return err
		}
		r.streamCRC = block.CombineCRC(r.streamCRC, crc)
		if r.recordStats {
			r.stats.BlockStartOffsets = append(r.stats.BlockStartOffsets, offset)
			r.stats.BlockCRCs = append(r.stats.BlockCRCs, crc)
		}
		r.buf = data
		return nil

	case magic == block.EOSMagic:
		if r.recordStats {
			r.stats.EndOfStreamOffset = br.BitsRead() - block.MagicBits
		}
		want := uint32(br.ReadBits64(32))
		if err := br.Err(); err != nil {
			return err
		}
		if r.streamCRC != want {
			return block.ChecksumError("stream checksum mismatch")
		}
		if r.recordStats {
			r.stats.StreamCRC = want
		}
		// Skip ahead to the byte boundary. Is there a stream
		// concatenated to this one? It would start with BZ.
		br.Align()
		b, err := br.ReadAlignedByte()
		if err == io.EOF {
			r.eof = true
			return nil
		}
		if err != nil {
			return err
		}
		z, err := br.ReadAlignedByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		if b != block.FileMagic[0] || z != block.FileMagic[1] {
			return block.FormatError("bad magic value in continuation file")
		}
		return r.setup(false)

	default:
		return block.FormatError("bad magic value found")
	}
}
