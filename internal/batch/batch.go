// Package batch splits record slices into bounded chunks and writes them
// concurrently.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is used when a caller passes a non-positive size.
const DefaultChunkSize = 500

// Chunk splits items into consecutive sub-slices of at most size elements.
// The chunks share items' backing array and preserve its order.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// Dispatch runs fn for every chunk of items concurrently and waits for all
// of them. At most limit chunks run at once; limit <= 0 means no limit.
//
// A failing chunk does not cancel its siblings. The first error is returned
// once every chunk has finished.
func Dispatch[T any](ctx context.Context, items []T, size, limit int, fn func(ctx context.Context, chunk []T) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, chunk := range Chunk(items, size) {
		g.Go(func() error {
			return fn(ctx, chunk)
		})
	}

	return g.Wait()
}
