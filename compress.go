// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gbzip2 implements a bit-exact bzip2 compressor and
// decompressor. Compression runs the per-block pipeline (BWT via SA-IS
// over the Duval rotated block, move-to-front, zero run coding and
// length-limited canonical Huffman codes) concurrently over a fixed
// pool of workers while preserving block order in the output stream.
package gbzip2

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/cosnicolaou/gbzip2/internal/bitio"
	"github.com/cosnicolaou/gbzip2/internal/block"
)

// Strategy selects how Huffman coding tables are assigned to the
// 50-symbol groups of a block.
type Strategy struct {
	clusters   int
	iterations int
}

// SingleTable uses one frequency table over the whole block. The table
// is emitted twice since the format requires at least two.
func SingleTable() Strategy {
	return Strategy{}
}

// KMeans derives numTables coding tables, clamped to [2,6], by
// clustering the per-group frequency vectors with Lloyd's algorithm for
// the given number of iterations (at least 1).
func KMeans(numTables, iterations int) Strategy {
	if numTables < 2 {
		numTables = 2
	}
	if numTables > 6 {
		numTables = 6
	}
	if iterations < 1 {
		iterations = 1
	}
	return Strategy{clusters: numTables, iterations: iterations}
}

func (s Strategy) String() string {
	if s.clusters == 0 {
		return "single"
	}
	return fmt.Sprintf("kmeans(%v,%v)", s.clusters, s.iterations)
}

// Progress is used to report the progress of compression. Each report
// pertains to a correctly ordered block.
type Progress struct {
	Duration         time.Duration
	Block            uint64
	CRC              uint32
	Compressed, Size int
}

type compressorOpts struct {
	verbose     bool
	concurrency int
	progressCh  chan<- Progress
	strategy    Strategy
}

// CompressorOption represents an option to NewCompressor.
type CompressorOption func(*compressorOpts)

// BZVerbose controls verbose logging for compression.
func BZVerbose(v bool) CompressorOption {
	return func(o *compressorOpts) {
		o.verbose = v
	}
}

// BZConcurrency sets the degree of concurrency to use, that is, the
// number of goroutines used for block compression.
func BZConcurrency(n int) CompressorOption {
	return func(o *compressorOpts) {
		o.concurrency = n
	}
}

// BZSendUpdates sets the channel for sending progress updates over.
func BZSendUpdates(ch chan<- Progress) CompressorOption {
	return func(o *compressorOpts) {
		o.progressCh = ch
	}
}

// BZStrategy sets the Huffman table selection strategy.
func BZStrategy(s Strategy) CompressorOption {
	return func(o *compressorOpts) {
		o.strategy = s
	}
}

type compressWork struct {
	order uint64
	crc   uint32
	rle   []byte
	size  int
}

type compressResult struct {
	order    uint64
	crc      uint32
	data     []byte
	nbits    int
	size     int
	duration time.Duration
}

// compressWorker owns a request and a response channel; the Compressor
// sends to and receives from the workers in the same round-robin order
// so that output block order matches input order without a reordering
// buffer.
type compressWorker struct {
	workCh   chan compressWork
	resultCh chan compressResult
}

func (w *compressWorker) run(ctx context.Context, strategy block.Strategy) {
	for {
		select {
		case wk, ok := <-w.workCh:
			if !ok {
				return
			}
			start := time.Now()
			data, nbits := block.Encode(wk.crc, wk.rle, strategy)
			res := compressResult{
				order:    wk.order,
				crc:      wk.crc,
				data:     data,
				nbits:    nbits,
				size:     wk.size,
				duration: time.Since(start),
			}
			select {
			case w.resultCh <- res:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Compressor is a concurrent bzip2 stream compressor. Raw bytes are
// run length encoded on the calling goroutine; whenever the block
// budget is reached the block is handed to the next worker in
// round-robin order. Workers never touch the output writer, which is
// owned exclusively by the calling goroutine.
type Compressor struct {
	ctx        context.Context
	bw         *bitio.Writer
	workers    []*compressWorker
	wg         sync.WaitGroup
	rle        *block.RLE1Encoder
	strategy   block.Strategy
	progressCh chan<- Progress
	verbose    bool

	blkCRC    uint32
	blkSize   int
	streamCRC uint32
	order     uint64

	sendIdx  int
	recvIdx  int
	inflight int

	wroteHeader bool
	closed      bool
	err         error
}

// NewCompressor creates a new parallel compressor writing a bzip2
// stream to w.
func NewCompressor(ctx context.Context, w io.Writer, opts ...CompressorOption) *Compressor {
	o := compressorOpts{
		concurrency: runtime.GOMAXPROCS(-1),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	c := &Compressor{
		ctx:        ctx,
		bw:         bitio.NewWriter(w),
		rle:        block.NewRLE1Encoder(block.BlockSize),
		strategy:   block.Strategy{Clusters: o.strategy.clusters, Iterations: o.strategy.iterations},
		progressCh: o.progressCh,
		verbose:    o.verbose,
		workers:    make([]*compressWorker, o.concurrency),
	}
	c.wg.Add(o.concurrency)
	for i := range c.workers {
		w := &compressWorker{
			workCh:   make(chan compressWork, 1),
			resultCh: make(chan compressResult, 1),
		}
		c.workers[i] = w
		go func() {
			w.run(ctx, c.strategy)
			c.wg.Done()
		}()
	}
	return c
}

func (c *Compressor) trace(format string, args ...interface{}) {
	if c.verbose {
		log.Printf(format, args...)
	}
}

// Write implements io.Writer.
func (c *Compressor) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.closed {
		return 0, errClosed
	}
	total := len(p)
	for len(p) > 0 {
		n, full := c.rle.Write(p)
		c.blkCRC = block.UpdateCRC(c.blkCRC, p[:n])
		c.blkSize += n
		p = p[n:]
		if !full {
			continue
		}
		if err := c.cutBlock(); err != nil {
			c.err = err
			return total - len(p), err
		}
	}
	return total, nil
}

// cutBlock finalizes the in-progress block and hands it to the next
// worker.
func (c *Compressor) cutBlock() error {
	data := c.rle.Finish()
	if len(data) == 0 {
		return nil
	}
	rle := make([]byte, len(data))
	copy(rle, data)
	c.order++
	wk := compressWork{order: c.order, crc: c.blkCRC, rle: rle, size: c.blkSize}
	c.blkCRC = 0
	c.blkSize = 0
	c.rle.Reset()

	if err := c.writeHeader(); err != nil {
		return err
	}
	// At most one block is in flight per worker; wait for the oldest
	// before reusing its slot so that send and receive stay in the same
	// round-robin order.
	if c.inflight == len(c.workers) {
		if err := c.receiveOne(); err != nil {
			return err
		}
	}
	c.trace("compressing: block %v, %v raw bytes", wk.order, wk.size)
	select {
	case c.workers[c.sendIdx].workCh <- wk:
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
	c.sendIdx = (c.sendIdx + 1) % len(c.workers)
	c.inflight++
	return nil
}

func (c *Compressor) receiveOne() error {
	var res compressResult
	select {
	case res = <-c.workers[c.recvIdx].resultCh:
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
	c.recvIdx = (c.recvIdx + 1) % len(c.workers)
	c.inflight--
	c.trace("compressed: block %v, %v bits", res.order, res.nbits)
	c.bw.Append(res.data, res.nbits)
	if err := c.bw.Err(); err != nil {
		return err
	}
	c.streamCRC = block.CombineCRC(c.streamCRC, res.crc)
	if c.progressCh != nil {
		c.progressCh <- Progress{
			Duration:   res.duration,
			Block:      res.order,
			CRC:        res.crc,
			Compressed: (res.nbits + 7) / 8,
			Size:       res.size,
		}
	}
	return nil
}

func (c *Compressor) writeHeader() error {
	if c.wroteHeader {
		return nil
	}
	c.bw.WriteBytes(block.FileMagic)
	c.bw.WriteBits('h', 8)
	c.bw.WriteBits(block.Level, 8)
	c.wroteHeader = true
	return c.bw.Err()
}

// Close flushes the in-progress block, waits for all outstanding
// workers and writes the stream footer. It must be called exactly once;
// subsequent calls return the first error encountered, if any.
func (c *Compressor) Close() error {
	if c.closed {
		return c.err
	}
	c.closed = true
	defer func() {
		for _, w := range c.workers {
			close(w.workCh)
		}
		c.wg.Wait()
	}()
	if c.err == nil {
		c.err = c.cutBlock()
	}
	for c.err == nil && c.inflight > 0 {
		c.err = c.receiveOne()
	}
	if c.err == nil {
		c.err = c.writeHeader()
	}
	if c.err == nil {
		c.bw.WriteBits(block.EOSMagic, block.MagicBits)
		c.bw.WriteBits(uint64(c.streamCRC), 32)
		c.bw.Pad()
		c.err = c.bw.Err()
	}
	return c.err
}
