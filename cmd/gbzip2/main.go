// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cosnicolaou/gbzip2"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
)

type CommonFlags struct {
	Verbose bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type compressFlags struct {
	CommonFlags
	Concurrency int    `subcmd:"threads,4,'number of threads used for block compression'"`
	Strategy    string `subcmd:"strategy,single,'huffman coding table strategy: single or kmeans'"`
	Iterations  int    `subcmd:"iterations,3,'number of clustering iterations for the kmeans strategy'"`
	NumTables   int    `subcmd:"num-tables,6,'number of coding tables for the kmeans strategy (2..6)'"`
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
}

type noFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	defaultConcurrency := map[string]interface{}{
		"threads": runtime.GOMAXPROCS(-1),
	}

	compressCmd := subcmd.NewCommand("compress",
		subcmd.MustRegisterFlagStruct(&compressFlags{}, defaultConcurrency, nil),
		compress, subcmd.AtLeastNArguments(1))
	compressCmd.Document(`compress files to bzip2. Files may be local, on S3 or a URL; each input <path> is written to <path>.bz2, refusing to overwrite existing files.`)

	decompressCmd := subcmd.NewCommand("decompress",
		subcmd.MustRegisterFlagStruct(&noFlags{}, nil, nil),
		decompress, subcmd.AtLeastNArguments(1))
	decompressCmd.Document(`decompress bzip2 files. The final extension is stripped to name the output, refusing to overwrite existing files.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&noFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`decode bzip2 files to obtain per block offsets and checksums; intended for debugging.`)

	cmdSet = subcmd.NewCommandSet(compressCmd, decompressCmd, inspectCmd)
	cmdSet.Document(`compress and decompress bzip2 files. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

// compressedName returns the output path for compressing path.
func compressedName(path string) string {
	return path + ".bz2"
}

// decompressedName strips the final extension from path, or appends
// .out when there is none.
func decompressedName(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + ".out"
	}
	return strings.TrimSuffix(path, ext)
}

func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func(context.Context) error, error) {
	if strings.HasPrefix(name, "http") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, 0, nil, err
		}
		return resp.Body,
			resp.ContentLength,
			func(context.Context) error {
				resp.Body.Close()
				return nil
			},
			err
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

// createFile creates name for writing, refusing to overwrite an
// existing file.
func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if _, err := file.Stat(ctx, name); err == nil {
		return nil, nil, fmt.Errorf("%v: already exists", name)
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}

func strategyFromFlags(cl *compressFlags) (gbzip2.Strategy, error) {
	switch cl.Strategy {
	case "single":
		return gbzip2.SingleTable(), nil
	case "kmeans":
		return gbzip2.KMeans(cl.NumTables, cl.Iterations), nil
	}
	return gbzip2.Strategy{}, fmt.Errorf("unrecognised strategy: %v", cl.Strategy)
}

func progressBar(ctx context.Context, wr io.Writer, ch chan gbzip2.Progress, size int64) {
	next := uint64(1)
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	for {
		select {
		case p := <-ch:
			if p.Block == 0 {
				fmt.Fprintf(wr, "\n")
				return
			}
			bar.Add(p.Size)
			if p.Block != next {
				log.Fatalf("out of sequence block %#v\n", p)
			}
			next++
		case <-ctx.Done():
			return
		}
	}
}

func compress(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*compressFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	strategy, err := strategyFromFlags(cl)
	if err != nil {
		return err
	}
	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))

	for _, inputFile := range args {
		if err := compressFile(ctx, cl, strategy, isTTY, inputFile); err != nil {
			return err
		}
	}
	return nil
}

func compressFile(ctx context.Context, cl *compressFlags, strategy gbzip2.Strategy, isTTY bool, inputFile string) error {
	rd, size, readerCleanup, err := openFileOrURL(ctx, inputFile)
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	wr, writerCleanup, err := createFile(ctx, compressedName(inputFile))
	if err != nil {
		return err
	}

	opts := []gbzip2.CompressorOption{
		gbzip2.BZConcurrency(cl.Concurrency),
		gbzip2.BZVerbose(cl.Verbose),
		gbzip2.BZStrategy(strategy),
	}
	var (
		progressBarWg sync.WaitGroup
		progressBarCh chan gbzip2.Progress
	)
	if cl.ProgressBar && isTTY && size > 0 {
		progressBarCh = make(chan gbzip2.Progress, cl.Concurrency)
		opts = append(opts, gbzip2.BZSendUpdates(progressBarCh))
		progressBarWg.Add(1)
		go func() {
			progressBar(ctx, os.Stdout, progressBarCh, size)
			progressBarWg.Done()
		}()
	}

	wc := gbzip2.NewCompressor(ctx, wr, opts...)

	errs := &errors.M{}
	_, err = io.Copy(wc, rd)
	errs.Append(err)
	errs.Append(wc.Close())
	errs.Append(writerCleanup(ctx))

	if progressBarCh != nil {
		close(progressBarCh)
		progressBarWg.Wait()
	}
	return errs.Err()
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	for _, inputFile := range args {
		rd, _, readerCleanup, err := openFileOrURL(ctx, inputFile)
		if err != nil {
			return err
		}
		dc := gbzip2.NewReaderWithStats(rd)
		if _, err := io.Copy(io.Discard, dc); err != nil {
			readerCleanup(ctx)
			return err
		}
		stats := gbzip2.StreamStats(dc)
		fmt.Printf("%v: %v blocks, stream crc 0x%08x\n", inputFile, len(stats.BlockCRCs), stats.StreamCRC)
		for i, offset := range stats.BlockStartOffsets {
			fmt.Printf("\tblock %v: offset %v bits, crc 0x%08x\n", i+1, offset, stats.BlockCRCs[i])
		}
		fmt.Printf("\tend of stream: offset %v bits\n", stats.EndOfStreamOffset)
		readerCleanup(ctx)
	}
	return nil
}

func decompress(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	for _, inputFile := range args {
		if err := decompressFile(ctx, inputFile); err != nil {
			return err
		}
	}
	return nil
}

func decompressFile(ctx context.Context, inputFile string) error {
	rd, _, readerCleanup, err := openFileOrURL(ctx, inputFile)
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	wr, writerCleanup, err := createFile(ctx, decompressedName(inputFile))
	if err != nil {
		return err
	}

	errs := &errors.M{}
	_, err = io.Copy(wr, gbzip2.NewReader(rd))
	errs.Append(err)
	errs.Append(writerCleanup(ctx))
	return errs.Err()
}
