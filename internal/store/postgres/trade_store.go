package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantasea/coinsentry/internal/domain"
)

// TradeStore implements domain.TradeLedger using PostgreSQL. The trades
// table is insert-only; there are no UPDATE or DELETE statements anywhere in
// this package.
type TradeStore struct {
	pool *pgxpool.Pool
}

var _ domain.TradeLedger = (*TradeStore)(nil)

// NewTradeStore creates a new TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, symbol, quantity, price, action, timestamp`

func scanTradeRows(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var records []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Quantity, &rec.Price, &rec.Action, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Append inserts one trade record. The record's ID is ignored; the database
// assigns it, and a zero Timestamp defaults to the insert time.
func (s *TradeStore) Append(ctx context.Context, rec domain.TradeRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trades (symbol, quantity, price, action, timestamp)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.Symbol, rec.Quantity, rec.Price, string(rec.Action), ts,
	)
	if err != nil {
		return fmt.Errorf("postgres: append trade %s: %w", rec.Symbol, err)
	}
	return nil
}

// ListRecent returns the most recent trades, newest first.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeSelectCols+`
		FROM trades
		ORDER BY timestamp DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	records, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent trades: %w", err)
	}
	return records, nil
}

// ListBefore returns all trades strictly older than before, oldest first.
// Used by the archiver to export closed periods.
func (s *TradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeSelectCols+`
		FROM trades
		WHERE timestamp < $1
		ORDER BY timestamp ASC, id ASC`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before %s: %w", before.Format(time.RFC3339), err)
	}
	defer rows.Close()

	records, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades before: %w", err)
	}
	return records, nil
}
