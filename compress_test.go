// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbzip2_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/cosnicolaou/gbzip2"
)

func TestBlockOrdering(t *testing.T) {
	// Four plus blocks across a small pool; output order must match
	// input order regardless of per-block work variance.
	data := genPredictableRandomData(4 * 1024 * 1024)
	for _, concurrency := range []int{1, 2, 4, 8} {
		compressed := compress(t, data, gbzip2.BZConcurrency(concurrency))
		if got := decompress(t, compressed); !bytes.Equal(got, data) {
			t.Errorf("concurrency %v: round trip failed", concurrency)
		}
	}
}

func TestProgressUpdates(t *testing.T) {
	data := genPredictableRandomData(3 * 1024 * 1024)
	ch := make(chan gbzip2.Progress, 4)
	done := make(chan struct{})
	var (
		blocks []uint64
		total  int
	)
	go func() {
		for p := range ch {
			blocks = append(blocks, p.Block)
			total += p.Size
		}
		close(done)
	}()

	out := &bytes.Buffer{}
	wc := gbzip2.NewCompressor(context.Background(), out,
		gbzip2.BZConcurrency(4),
		gbzip2.BZSendUpdates(ch))
	if _, err := wc.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := wc.Close(); err != nil {
		t.Fatal(err)
	}
	close(ch)
	<-done

	if got, want := total, len(data); got != want {
		t.Errorf("got %v bytes reported, want %v", got, want)
	}
	if len(blocks) < 2 {
		t.Fatalf("expected multiple blocks, got %v", len(blocks))
	}
	for i, b := range blocks {
		if got, want := b, uint64(i+1); got != want {
			t.Errorf("out of sequence block: got %v, want %v", got, want)
		}
	}
}

func TestWriteChunked(t *testing.T) {
	// Bytes arriving one at a time must produce the identical stream to
	// a single write.
	data := genRepetitiveData(8192)
	whole := compress(t, data)

	out := &bytes.Buffer{}
	wc := gbzip2.NewCompressor(context.Background(), out)
	for i := range data {
		if _, err := wc.Write(data[i : i+1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := wc.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.Bytes(), whole; !bytes.Equal(got, want) {
		t.Errorf("chunked write produced a different stream")
	}
}

func TestCompressorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wc := gbzip2.NewCompressor(ctx, io.Discard, gbzip2.BZConcurrency(2))
	data := genPredictableRandomData(2 * 1024 * 1024)
	if _, err := wc.Write(data); err != nil {
		t.Fatal(err)
	}
	cancel()
	// Close may or may not observe the cancellation, but it must return
	// and the workers must all exit.
	if err := wc.Close(); err == nil {
		t.Log("close completed before cancellation was observed")
	}
}

func TestCloseIdempotent(t *testing.T) {
	out := &bytes.Buffer{}
	wc := gbzip2.NewCompressor(context.Background(), out)
	if _, err := wc.Write([]byte("banana")); err != nil {
		t.Fatal(err)
	}
	if err := wc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := wc.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := wc.Write([]byte("x")); err == nil {
		t.Errorf("expected an error writing to a closed compressor")
	}
	if got, want := decompress(t, out.Bytes()), []byte("banana"); !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStrategyString(t *testing.T) {
	if got, want := gbzip2.SingleTable().String(), "single"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := gbzip2.KMeans(9, 0).String(), "kmeans(6,1)"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
