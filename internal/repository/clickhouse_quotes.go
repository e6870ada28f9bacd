package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"MarketClose/internal/domain/models"
	"MarketClose/internal/domain/repository"
)

// ClickHouseQuotes reads closes from a warehouse table with the layout
//
//	(date Date, symbol String, name String, close Decimal(18, 6))
//
// Closes are selected as strings so no precision is lost on the way to decimal.
type ClickHouseQuotes struct {
	db    *sql.DB
	table string
}

// rowScanner is the subset of *sql.Rows the readers use.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// NewClickHouseQuotes creates a quote source over an open ClickHouse pool.
func NewClickHouseQuotes(db *sql.DB, table string) repository.QuoteSource {
	return &ClickHouseQuotes{db: db, table: table}
}

// Search matches the text against symbols exactly and against names by substring.
func (s *ClickHouseQuotes) Search(ctx context.Context, text string, class models.AssetClass) ([]models.Match, error) {
	q := fmt.Sprintf("SELECT symbol, anyLast(name) FROM %s WHERE symbol = ? OR positionCaseInsensitive(name, ?) > 0 GROUP BY symbol ORDER BY symbol = ? DESC, symbol LIMIT 5", s.table)
	rows, err := s.db.QueryContext(ctx, q, text, text, text)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	defer rows.Close()
	return scanMatches(rows, class)
}

func (s *ClickHouseQuotes) History(ctx context.Context, m models.Match, from, to time.Time) ([]models.Bar, error) {
	q := fmt.Sprintf("SELECT date, toString(close) FROM %s WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date", s.table)
	rows, err := s.db.QueryContext(ctx, q, m.Key, from, to)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", m.Key, err)
	}
	defer rows.Close()
	return scanBars(rows)
}

func scanMatches(rows rowScanner, class models.AssetClass) ([]models.Match, error) {
	var out []models.Match
	for rows.Next() {
		m := models.Match{Class: class}
		if err := rows.Scan(&m.Key, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanBars(rows rowScanner) ([]models.Bar, error) {
	var out []models.Bar
	for rows.Next() {
		var (
			date time.Time
			raw  string
		)
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, err
		}
		c, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("close %q on %s: %w", raw, date.Format(time.DateOnly), err)
		}
		out = append(out, models.Bar{
			Date:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			Close: c,
		})
	}
	return out, rows.Err()
}
