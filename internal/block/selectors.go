// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package block

import "github.com/cosnicolaou/gbzip2/internal/bitio"

// The per-group coding table indices are move-to-front transformed over
// the table index alphabet and then written in unary, an index worth of
// one bits terminated by a zero bit.

// tableMTF is a move-to-front codec over the small alphabet of coding
// table indices.
type tableMTF struct {
	order [maxTables]uint8
	n     int
}

func newTableMTF(numTables int) *tableMTF {
	m := &tableMTF{n: numTables}
	for i := 0; i < numTables; i++ {
		m.order[i] = uint8(i)
	}
	return m
}

func (m *tableMTF) encode(v uint8) int {
	pos := 0
	for m.order[pos] != v {
		pos++
	}
	copy(m.order[1:pos+1], m.order[:pos])
	m.order[0] = v
	return pos
}

func (m *tableMTF) decode(pos int) uint8 {
	v := m.order[pos]
	copy(m.order[1:pos+1], m.order[:pos])
	m.order[0] = v
	return v
}

func writeSelectors(bw *bitio.Writer, selectors []uint8, numTables int) {
	mtf := newTableMTF(numTables)
	for _, s := range selectors {
		pos := mtf.encode(s)
		for i := 0; i < pos; i++ {
			bw.WriteBits(1, 1)
		}
		bw.WriteBits(0, 1)
	}
}

func readSelectors(br *bitio.Reader, numSelectors, numTables int) ([]uint8, error) {
	mtf := newTableMTF(numTables)
	selectors := make([]uint8, numSelectors)
	for i := range selectors {
		c := 0
		for br.ReadBit() {
			c++
			if c >= numTables {
				return nil, FormatError("tree index too large")
			}
		}
		if err := br.Err(); err != nil {
			return nil, err
		}
		selectors[i] = mtf.decode(c)
	}
	return selectors, nil
}
