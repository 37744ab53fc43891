package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// ErrInvalidBatchSize is returned when the batch size is not positive.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Chunk splits items into consecutive slices of at most size elements. The
// returned slices share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

type batchOptions struct {
	onChunk func(index, total, size int)
}

// BatchOption customises ProcessInBatches.
type BatchOption func(*batchOptions)

// WithChunkHook calls fn before each chunk is launched. index is zero based.
func WithChunkHook(fn func(index, total, size int)) BatchOption {
	return func(o *batchOptions) {
		o.onChunk = fn
	}
}

// unjoin returns the only error of a joined error as is, so a single failure
// reaches the caller exactly as op returned it.
func unjoin(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) == 1 {
			return errs[0]
		}
	}
	return err
}

// ProcessInBatches runs op for every item, batchSize items at a time.
//
// All items of a chunk start together and the next chunk only starts after
// every item of the current one has returned. When an item of a chunk fails,
// its error is returned unchanged once its siblings have settled, and no
// further chunk is started. Several failures in one chunk are joined.
func ProcessInBatches[T any](ctx context.Context, items []T, batchSize int, op func(context.Context, T) error, opts ...BatchOption) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}

	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	chunks := Chunk(items, batchSize)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch %d/%d not started: %w", i+1, len(chunks), err)
		}
		if o.onChunk != nil {
			o.onChunk(i, len(chunks), len(chunk))
		}

		p := pool.New().WithErrors()
		for _, item := range chunk {
			p.Go(func() error {
				return op(ctx, item)
			})
		}
		if err := p.Wait(); err != nil {
			return unjoin(err)
		}
	}
	return nil
}
