package ts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/tradestation-client/internal/constants"
)

// BatchQuoteResult holds the outcome of one chunk of a batch quote fetch.
type BatchQuoteResult struct {
	Symbols  []string
	Quotes   []Quote
	Errors   []QuoteSnapshotError
	Err      error
	Duration time.Duration
}

// BatchQuoteFetcher fetches quote snapshots for symbol lists larger than a
// single request allows. Symbols are split into per-request chunks and
// fetched concurrently; the admission layer still serializes requests when
// the endpoint's quota is exhausted.
type BatchQuoteFetcher struct {
	client      MarketDataClient
	concurrency int
	chunkSize   int
}

// BatchQuoteOption configures a BatchQuoteFetcher.
type BatchQuoteOption func(*BatchQuoteFetcher)

// WithBatchConcurrency sets how many chunks are fetched at once.
func WithBatchConcurrency(n int) BatchQuoteOption {
	return func(f *BatchQuoteFetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithChunkSize sets the maximum symbols per request.
func WithChunkSize(n int) BatchQuoteOption {
	return func(f *BatchQuoteFetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// NewBatchQuoteFetcher creates a fetcher on top of a market data client.
func NewBatchQuoteFetcher(client MarketDataClient, opts ...BatchQuoteOption) *BatchQuoteFetcher {
	fetcher := &BatchQuoteFetcher{
		client:      client,
		concurrency: constants.DefaultBatchConcurrency,
		chunkSize:   constants.MaxSymbolsPerRequest,
	}

	for _, opt := range opts {
		opt(fetcher)
	}

	return fetcher
}

// Fetch retrieves snapshots for all symbols and merges them in input order.
// Chunk failures are reported per chunk in the returned results; Fetch
// itself fails only when every chunk failed or the context was canceled.
func (f *BatchQuoteFetcher) Fetch(ctx context.Context, symbols []string) ([]Quote, []BatchQuoteResult, error) {
	if len(symbols) == 0 {
		return nil, nil, ErrNoSymbols
	}

	chunks := chunkSymbols(symbols, f.chunkSize)
	results := make([]BatchQuoteResult, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.concurrency)

	var mu sync.Mutex

	for index, chunk := range chunks {
		index, chunk := index, chunk

		group.Go(func() error {
			start := time.Now()
			resp, err := f.client.GetQuoteSnapshots(groupCtx, chunk)

			result := BatchQuoteResult{
				Symbols:  chunk,
				Err:      err,
				Duration: time.Since(start),
			}
			if resp != nil {
				result.Quotes = resp.Quotes
				result.Errors = resp.Errors
			}

			mu.Lock()
			results[index] = result
			mu.Unlock()

			// Chunk errors are collected, not propagated, so one failed
			// chunk does not cancel the rest.
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, results, fmt.Errorf("fetching quote batches: %w", err)
	}

	merged := make([]Quote, 0, len(symbols))
	failed := 0

	for _, result := range results {
		if result.Err != nil {
			failed++

			continue
		}

		merged = append(merged, result.Quotes...)
	}

	if failed == len(results) {
		return nil, results, fmt.Errorf("fetching quote batches: %w", results[0].Err)
	}

	return merged, results, nil
}

// chunkSymbols splits symbols into slices of at most size elements.
func chunkSymbols(symbols []string, size int) [][]string {
	if size <= 0 {
		size = constants.MaxSymbolsPerRequest
	}

	chunks := make([][]string, 0, (len(symbols)+size-1)/size)

	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}

		chunks = append(chunks, symbols[start:end])
	}

	return chunks
}
