package s3blob

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quantasea/coinsentry/internal/domain"
)

// Signer produces a detached signature over an export payload so a reader
// can verify the archive was produced by this process and not edited.
type Signer interface {
	Sign(data []byte) []byte
}

// LedgerArchiver exports closed ledger periods to blob storage as JSONL,
// with a detached hex-encoded signature uploaded next to each export.
// Archived rows are never deleted from the primary store; the export is an
// audit copy.
type LedgerArchiver struct {
	writer domain.BlobWriter
	ledger domain.TradeLedger
	signer Signer
	logger *slog.Logger
}

// NewLedgerArchiver creates an archiver. signer may be nil, in which case no
// signature object is written.
func NewLedgerArchiver(writer domain.BlobWriter, ledger domain.TradeLedger, signer Signer, logger *slog.Logger) *LedgerArchiver {
	return &LedgerArchiver{
		writer: writer,
		ledger: ledger,
		signer: signer,
		logger: logger.With(slog.String("component", "ledger_archiver")),
	}
}

// ArchiveBefore exports all trades strictly older than the cutoff to
// archive/trades/YYYY-MM-DD.jsonl and returns the number of exported
// records. An empty period uploads nothing.
func (a *LedgerArchiver) ArchiveBefore(ctx context.Context, before time.Time) (int64, error) {
	records, err := a.ledger.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}

	path := archivePath(before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	if a.signer != nil {
		sig := hex.EncodeToString(a.signer.Sign(buf))
		if err := a.writer.Put(ctx, path+".sig", strings.NewReader(sig), "text/plain"); err != nil {
			return 0, fmt.Errorf("s3blob: archive signature upload: %w", err)
		}
	}

	a.logger.InfoContext(ctx, "ledger archived",
		slog.String("path", path),
		slog.Int("records", len(records)))

	return int64(len(records)), nil
}

// archivePath builds the S3 key for an export, partitioned by the cutoff day.
//
//	archive/trades/2026-02-01.jsonl
func archivePath(before time.Time) string {
	return fmt.Sprintf("archive/trades/%s.jsonl", before.UTC().Format("2006-01-02"))
}

// marshalJSONL serialises records as newline-delimited JSON, one compact
// line per record.
func marshalJSONL(records []domain.TradeRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
