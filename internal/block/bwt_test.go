// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"
)

func TestDuval(t *testing.T) {
	if got, want := duval([]byte("bananaa")), 6; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	rotated, _ := rotateDuval([]byte("abacabab"))
	if got, want := rotated, []byte("ababacab"); !bytes.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

// naiveSuffixArray sorts the suffixes of text, with an implicit
// sentinel smaller than any byte at index len(text).
func naiveSuffixArray(text []byte) []int {
	sa := make([]int, len(text)+1)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(text[sa[i]:], text[sa[j]:]) < 0
	})
	return sa
}

func TestSuffixArray(t *testing.T) {
	for _, tc := range []string{
		"",
		"a",
		"banana",
		"abracadabra",
		"aaaaaaaa",
		"mississippi",
	} {
		got := buildSuffixArray([]byte(tc))
		want := naiveSuffixArray([]byte(tc))
		if len(got) != len(want) {
			t.Errorf("%q: got %v entries, want %v", tc, len(got), len(want))
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("%q: entry %v: got %v, want %v", tc, i, got, want)
				break
			}
		}
	}
}

func TestSuffixArrayRandom(t *testing.T) {
	gen := rand.New(rand.NewSource(0x1234))
	for i := 0; i < 50; i++ {
		n := gen.Intn(400)
		text := make([]byte, n)
		for j := range text {
			text[j] = byte(gen.Intn(4)) + 'a' // small alphabet forces recursion
		}
		got := buildSuffixArray(text)
		want := naiveSuffixArray(text)
		for j := range got {
			if got[j] != want[j] {
				t.Fatalf("%v: length %v: got %v, want %v", i, n, got, want)
			}
		}
	}
}

func TestBWT(t *testing.T) {
	for i, tc := range []struct {
		input, want string
		origPtr     int
	}{
		{"banana", "nnbaaa", 3},
		{"bananaa", "nanbaaa", -1},
		{"bananaaar", "nanbaraaa", 5},
		{
			"If Peter Piper picked a peck of pickled peppers, where's the peck of pickled peppers Peter Piper picked?????",
			"fsrrdkkeaddrrffs,esd?????     eeiiiieeeehrppkllkppttpphppPPIootwppppPPcccccckk      iipp    eeeeeeeeer'ree  ",
			24,
		},
	} {
		data, origPtr := bwtEncode([]byte(tc.input))
		if got, want := data, []byte(tc.want); !bytes.Equal(got, want) {
			t.Errorf("%v: got %q, want %q", i, got, want)
		}
		if tc.origPtr >= 0 {
			if got, want := origPtr, tc.origPtr; got != want {
				t.Errorf("%v: got origPtr %v, want %v", i, got, want)
			}
		}
	}
}

func TestInverseBWT(t *testing.T) {
	if got, want := bwtDecode([]byte("nnbaaa"), 3), []byte("banana"); !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBWTRoundTrip(t *testing.T) {
	gen := rand.New(rand.NewSource(0x5678))
	inputs := [][]byte{
		[]byte("a"),
		[]byte("aaaaa"),
		[]byte("banana"),
		bytes.Repeat([]byte("ab"), 1000),
	}
	for i := 0; i < 20; i++ {
		n := gen.Intn(2000) + 1
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = byte(gen.Intn(256))
		}
		inputs = append(inputs, buf)
	}
	for i, input := range inputs {
		data, origPtr := bwtEncode(append([]byte(nil), input...))
		if got, want := bwtDecode(data, origPtr), input; !bytes.Equal(got, want) {
			t.Errorf("%v: round trip failed for %v bytes", i, len(input))
		}
	}
}
