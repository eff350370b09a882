package domain

import (
	"context"
	"io"
	"time"
)

// TradeLedger is the append-only record of executed sells and trims. There
// is no update or delete; the read methods exist for audit display and
// archival only and are never consulted by the risk evaluator.
type TradeLedger interface {
	Append(ctx context.Context, rec TradeRecord) error
	ListRecent(ctx context.Context, limit int) ([]TradeRecord, error)
	ListBefore(ctx context.Context, before time.Time) ([]TradeRecord, error)
}

// BlobWriter uploads an object to durable blob storage. Used by the ledger
// archiver for signed audit exports.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
