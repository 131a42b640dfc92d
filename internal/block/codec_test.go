// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cosnicolaou/gbzip2/internal/bitio"
)

// encodeRaw runs the RLE-1 step and the block encoder over raw bytes.
func encodeRaw(t *testing.T, raw []byte, strategy Strategy) ([]byte, int, uint32) {
	t.Helper()
	crc := ChecksumCRC(raw)
	data, nbits := Encode(crc, encodeRLE1(raw), strategy)
	return data, nbits, crc
}

func decodeBlockBits(t *testing.T, data []byte) ([]byte, uint32, error) {
	t.Helper()
	br := bitio.NewReader(bytes.NewReader(data))
	if got, want := br.ReadBits64(MagicBits), uint64(BlockMagic); got != want {
		t.Fatalf("got magic %x, want %x", got, want)
	}
	return Decode(br)
}

func testBlockRoundTrip(t *testing.T, raw []byte, strategy Strategy) {
	t.Helper()
	data, _, crc := encodeRaw(t, raw, strategy)
	decoded, gotCRC, err := decodeBlockBits(t, data)
	if err != nil {
		t.Fatalf("%v bytes: %v", len(raw), err)
	}
	if gotCRC != crc {
		t.Errorf("got crc %08x, want %08x", gotCRC, crc)
	}
	if !bytes.Equal(decoded, raw) {
		t.Errorf("round trip failed for %v bytes", len(raw))
	}
}

func TestBlockRoundTrip(t *testing.T) {
	gen := rand.New(rand.NewSource(0x1234))
	random := make([]byte, 10*1024)
	for i := range random {
		random[i] = byte(gen.Intn(256))
	}
	text := bytes.Repeat([]byte("If Peter Piper picked a peck of pickled peppers... "), 100)
	for _, raw := range [][]byte{
		[]byte("x"),
		[]byte("banana"),
		[]byte("aaaaa"),
		[]byte("hello world\n"),
		bytes.Repeat([]byte{0}, 4096),
		random,
		text,
	} {
		testBlockRoundTrip(t, raw, Strategy{})
		testBlockRoundTrip(t, raw, Strategy{Clusters: 6, Iterations: 3})
		testBlockRoundTrip(t, raw, Strategy{Clusters: 2, Iterations: 1})
	}
}

// The RLE-1 expansion of "aaaaa" is the 5 bytes a,a,a,a,1.
func TestBlockShortRun(t *testing.T) {
	rle := encodeRLE1([]byte("aaaaa"))
	if got, want := rle, []byte{'a', 'a', 'a', 'a', 1}; !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	testBlockRoundTrip(t, []byte("aaaaa"), Strategy{})
}

func TestBlockHeaderLayout(t *testing.T) {
	raw := []byte("banana")
	data, _, crc := encodeRaw(t, raw, Strategy{})
	br := bitio.NewReader(bytes.NewReader(data))
	if got, want := br.ReadBits64(MagicBits), uint64(BlockMagic); got != want {
		t.Fatalf("got %x, want %x", got, want)
	}
	if got, want := uint32(br.ReadBits64(32)), crc; got != want {
		t.Errorf("got crc %08x, want %08x", got, want)
	}
	if got, want := br.ReadBit(), false; got != want {
		t.Errorf("randomized bit set")
	}
	if got, want := br.ReadBits(24), 3; got != want {
		t.Errorf("got origPtr %v, want %v", got, want)
	}
	used := readSymbolMap(br)
	if got, want := used, []byte("abn"); !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := br.ReadBits(3), 2; got != want {
		t.Errorf("got %v tables, want %v", got, want)
	}
	if got, want := br.ReadBits(15), 1; got != want {
		t.Errorf("got %v selectors, want %v", got, want)
	}
}

func TestBlockCorruption(t *testing.T) {
	raw := bytes.Repeat([]byte("compressible text. "), 50)
	data, nbits, _ := encodeRaw(t, raw, Strategy{})
	// Flip single bits across the payload; decoding must fail, never
	// succeed silently or panic.
	for bit := 200; bit < nbits; bit += 97 {
		corrupted := append([]byte(nil), data...)
		corrupted[bit/8] ^= 0x80 >> (bit % 8)
		if _, _, err := decodeBlockBits(t, corrupted); err == nil {
			// The ignored randomized flag lies before the flipped range;
			// each flip made here must surface as a format or checksum
			// error.
			t.Errorf("bit %v: corruption went undetected", bit)
		}
	}
}
