// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

// The initial run length encoding step replaces runs of 4 or more
// identical bytes with four literal copies followed by a count byte
// holding the number of additional repetitions. A run is flushed after
// 255 bytes (count 251) at the latest.

// RLE1Encoder encodes the pre-BWT run length step into an internal
// buffer, tracking the pending run so that input can arrive in
// arbitrarily sized chunks. It reports when the buffer has reached the
// block budget so that the caller can cut a block.
type RLE1Encoder struct {
	buf   []byte
	limit int
	last  int
	run   int
}

// NewRLE1Encoder returns an encoder whose encoded output, including
// the pending run once flushed, never exceeds limit bytes.
func NewRLE1Encoder(limit int) *RLE1Encoder {
	return &RLE1Encoder{limit: limit, last: -1}
}

// Write consumes bytes from p until either p is exhausted or the block
// budget is reached. It returns the number of bytes consumed and
// whether the block is full.
func (e *RLE1Encoder) Write(p []byte) (n int, full bool) {
	for _, b := range p {
		if e.run > 0 && int(b) == e.last && e.run < 255 {
			e.run++
		} else {
			e.flushRun()
			e.last = int(b)
			e.run = 1
		}
		n++
		// A run of three grows by two bytes when a fourth byte joins it,
		// so the block is also full when that growth would not fit.
		size := len(e.buf) + e.pendingSize()
		if size >= e.limit || (e.run == 3 && size+2 > e.limit) {
			return n, true
		}
	}
	return n, false
}

func (e *RLE1Encoder) flushRun() {
	if e.run == 0 {
		return
	}
	b := byte(e.last)
	if e.run >= 4 {
		e.buf = append(e.buf, b, b, b, b, byte(e.run-4))
	} else {
		for i := 0; i < e.run; i++ {
			e.buf = append(e.buf, b)
		}
	}
	e.run = 0
}

func (e *RLE1Encoder) pendingSize() int {
	if e.run >= 4 {
		return 5
	}
	return e.run
}

// Len returns the encoded size so far, including the pending run.
func (e *RLE1Encoder) Len() int {
	return len(e.buf) + e.pendingSize()
}

// Finish flushes the pending run and returns the encoded block. The
// returned slice is only valid until the next call to Reset.
func (e *RLE1Encoder) Finish() []byte {
	e.flushRun()
	return e.buf
}

// Reset prepares the encoder for the next block.
func (e *RLE1Encoder) Reset() {
	e.buf = e.buf[:0]
	e.last = -1
	e.run = 0
}

// DecodeRLE1 expands a run length encoded block. Four identical bytes
// are read as literals and the byte after them is a count of further
// repetitions; as in the reference decoder, the byte following the
// count starts a new run.
func DecodeRLE1(data []byte) []byte {
	out := make([]byte, 0, len(data))
	last := -1
	repeats := 0
	for _, b := range data {
		if repeats == 3 {
			repeats = 0
			for i := 0; i < int(b); i++ {
				out = append(out, byte(last))
			}
			last = -1
			continue
		}
		if int(b) == last {
			repeats++
		} else {
			repeats = 0
		}
		last = int(b)
		out = append(out, b)
	}
	return out
}
