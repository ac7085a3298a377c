package etl

import (
	"context"

	"github.com/janduczek/retailsync/pkg/models"
)

// RawRow is one CSV record keyed by header column name.
type RawRow map[string]string

// RowReader yields bounded chunks of raw rows from one source file.
// Next returns the rows of the next chunk plus the number of malformed lines
// skipped while filling it. An empty chunk with zero malformed lines means
// end of input.
type RowReader interface {
	Next() ([]RawRow, int64, error)
	Close() error
}

// Writer persists one chunk of documents with idempotent upsert semantics.
type Writer interface {
	Write(ctx context.Context, docs []models.Document) (WriteResult, error)
}
