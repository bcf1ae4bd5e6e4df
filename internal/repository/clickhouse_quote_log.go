package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"QuoteFlow/internal/domain/models"
	"QuoteFlow/internal/domain/repository"
	pkgch "QuoteFlow/pkg/clickhouse"
)

// ClickHouseQuoteLog implements LogStore on one shard's quote_logs table.
// The table is append-only; ClickHouse has no serial keys, so insertion
// order is captured in a client-side monotonic seq column used to break
// timestamp ties on retrieval.
type ClickHouseQuoteLog struct {
	client *pkgch.Client
	table  string
	seq    atomic.Uint64
}

// NewClickHouseQuoteLog creates a shard store over the given client. table
// must be fully qualified (database.quote_logs).
func NewClickHouseQuoteLog(client *pkgch.Client, table string) *ClickHouseQuoteLog {
	s := &ClickHouseQuoteLog{client: client, table: table}
	// Seed well above any seq a previous process could have written recently.
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s
}

// Schema returns the idempotent bootstrap statements for a shard database.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.quote_logs (
			seq UInt64,
			symbol LowCardinality(String),
			price Float64,
			ts DateTime64(3, 'UTC')
		) ENGINE = MergeTree ORDER BY (symbol, ts, seq)`, database),
	}
}

func (s *ClickHouseQuoteLog) Insert(ctx context.Context, symbol string, price float64, ts time.Time) error {
	q := fmt.Sprintf("INSERT INTO %s (seq, symbol, price, ts) VALUES (?, ?, ?, ?)", s.table)
	if _, err := s.client.DB().ExecContext(ctx, q, s.seq.Add(1), symbol, price, ts.UTC()); err != nil {
		return fmt.Errorf("insert %s: %w", symbol, err)
	}
	return nil
}

func (s *ClickHouseQuoteLog) Recent(ctx context.Context, symbol string, limit int) ([]models.LogEntry, error) {
	q := fmt.Sprintf(
		"SELECT symbol, price, ts FROM %s WHERE symbol = ? ORDER BY ts DESC, seq DESC LIMIT ?", s.table)
	rows, err := s.client.DB().QueryContext(ctx, q, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("recent %s: %w", symbol, err)
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.Symbol, &e.Price, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("recent %s: scan: %w", symbol, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *ClickHouseQuoteLog) Average(ctx context.Context, symbol string, limit int) (float64, int, error) {
	q := fmt.Sprintf(
		"SELECT avg(price), count() FROM (SELECT price FROM %s WHERE symbol = ? ORDER BY ts DESC, seq DESC LIMIT ?)",
		s.table)
	var avg sql.NullFloat64
	var count uint64
	if err := s.client.DB().QueryRowContext(ctx, q, symbol, limit).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("average %s: %w", symbol, err)
	}
	if count == 0 || !avg.Valid {
		// No entries is a regular outcome, not an error.
		return 0, 0, nil
	}
	return avg.Float64, int(count), nil
}

func (s *ClickHouseQuoteLog) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseQuoteLog) Close() error {
	return s.client.Close()
}

var _ repository.LogStore = (*ClickHouseQuoteLog)(nil)
