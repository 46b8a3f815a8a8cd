package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/upsearch"
)

// maxLineSize bounds one JSON line of the input file.
const maxLineSize = 4 << 20

func upsertCmd(g *globalFlags) *cobra.Command {
	var (
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "upsert <index> <file.jsonl>",
		Short: "Upsert documents from a JSON Lines file",
		Long: `Upsert documents from a JSON Lines file ("-" reads stdin).

Each line is an object with "id", "content" (or "data") and an optional
"metadata" (or "fields") object. Documents are sent in batches; several
batches may be in flight at once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			if batchSize <= 0 {
				batchSize = s.cfg.Bulk.BatchSize
			}
			if concurrency <= 0 {
				concurrency = s.cfg.Bulk.Concurrency
			}

			in, closeIn, err := openInput(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			n, err := runUpsert(s.ctx, s.client.Index(args[0]), in, batchSize, concurrency, s.logger)
			if err != nil {
				return err
			}
			return printJSON(s.out, map[string]any{"index": args[0], "upserted": n})
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Documents per request (default: bulk.batch_size)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Requests in flight (default: bulk.concurrency)")

	return cmd
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// upserter is the part of *upsearch.Index used by runUpsert.
type upserter interface {
	Upsert(ctx context.Context, docs ...any) error
}

// runUpsert streams documents from r in batches and returns how many were
// written. The first failing batch cancels the rest.
func runUpsert(
	ctx context.Context, idx upserter, r io.Reader, batchSize, concurrency int, logger *zap.Logger,
) (int64, error) {
	start := time.Now()
	var written atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	send := func(batch []any) {
		eg.Go(func() error {
			if err := idx.Upsert(egCtx, batch...); err != nil {
				return err
			}
			total := written.Add(int64(len(batch)))
			logger.Debug("batch upserted",
				zap.Int("size", len(batch)),
				zap.String("total", humanize.Comma(total)),
			)
			return nil
		})
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	batch := make([]any, 0, batchSize)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			_ = eg.Wait()
			return written.Load(), fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, doc)
		if len(batch) == batchSize {
			send(batch)
			batch = make([]any, 0, batchSize)
		}
		if egCtx.Err() != nil {
			break
		}
	}
	if err := sc.Err(); err != nil {
		_ = eg.Wait()
		return written.Load(), fmt.Errorf("read input: %w", err)
	}
	if len(batch) > 0 && egCtx.Err() == nil {
		send(batch)
	}

	if err := eg.Wait(); err != nil {
		return written.Load(), fmt.Errorf("upsert: %w", err)
	}

	n := written.Load()
	logger.Info("upsert finished",
		zap.String("documents", humanize.Comma(n)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

var _ upserter = (*upsearch.Index)(nil)
