// Package batch commits ordered lists of row mutations in fixed-size chunks,
// keeping every transaction below the store's per-transaction operation
// ceiling. Chunks are atomic individually, not collectively: a failure
// between chunks leaves earlier chunks applied.
package batch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mediaplanhq/campaignstore/internal/dbx"
)

// DefaultChunkSize leaves headroom below common per-transaction statement
// ceilings (e.g. 450 against a 500 hard limit).
const DefaultChunkSize = 450

// Op is a single write or delete against a store location.
type Op struct {
	Query string
	Args  []any
}

// Writer partitions op lists into chunks and commits each chunk as its own
// transaction, sequentially and in order.
type Writer struct {
	db        *sql.DB
	chunkSize int
}

func NewWriter(db *sql.DB, chunkSize int) *Writer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Writer{db: db, chunkSize: chunkSize}
}

// Apply executes ops in order. The first failing chunk aborts the remainder;
// previously committed chunks are not rolled back.
func (w *Writer) Apply(ctx context.Context, ops []Op) error {
	for start := 0; start < len(ops); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(ops) {
			end = len(ops)
		}
		chunk := ops[start:end]
		err := dbx.WithTx(ctx, w.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			for _, op := range chunk {
				if _, err := tx.ExecContext(ctx, op.Query, op.Args...); err != nil {
					return fmt.Errorf("exec batch op: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("batch chunk [%d:%d): %w", start, end, err)
		}
	}
	return nil
}
