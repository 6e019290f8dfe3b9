package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Head and Get for an unknown key.
var ErrNotExist = errors.New("blob: key does not exist")

// ByteRange is a half-open [Start, End) slice of a blob.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes the range covers.
func (r ByteRange) Len() int64 { return r.End - r.Start }

// Store is the object-storage collaborator the pipeline writes audio to.
// Get must honor a partial range so chunked transcription can read one
// bounded slice at a time.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Get(ctx context.Context, key string, rng *ByteRange) (io.ReadCloser, error)
	Head(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}
