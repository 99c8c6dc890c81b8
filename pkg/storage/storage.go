package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gdpdash/gdpdash/pkg/dataset"
	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS gdp_per_capita (
  country        TEXT NOT NULL,
  year           INTEGER NOT NULL,
  gdp_per_capita REAL NOT NULL,
  seq            INTEGER NOT NULL,
  PRIMARY KEY (country, year)
);
CREATE INDEX IF NOT EXISTS idx_gdp_year ON gdp_per_capita(year);
CREATE TABLE IF NOT EXISTS exports (
  id          INTEGER PRIMARY KEY,
  source      TEXT NOT NULL,
  records     INTEGER NOT NULL,
  exported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ReplaceRecords swaps the stored tidy table for records in a single
// transaction and logs the export. The table order is kept in the seq column.
func (d *DB) ReplaceRecords(ctx context.Context, source string, records []dataset.Record) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM gdp_per_capita"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO gdp_per_capita(country, year, gdp_per_capita, seq) VALUES(?,?,?,?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, r.Country, r.Year, r.GDPPerCapita, i); err != nil {
			return fmt.Errorf("inserting %s %d: %w", r.Country, r.Year, err)
		}
	}

	if _, err = tx.ExecContext(ctx, "INSERT INTO exports(source, records) VALUES(?,?)", source, len(records)); err != nil {
		return err
	}
	return tx.Commit()
}

// ListRecords returns stored records matching the selection in table order.
// It applies the same predicate as dataset.TidyTable.Filter.
func (d *DB) ListRecords(ctx context.Context, sel dataset.Selection) ([]dataset.Record, error) {
	where := "WHERE year >= ? AND year <= ?"
	args := []interface{}{sel.YearMin, sel.YearMax}
	if len(sel.Countries) > 0 {
		where += " AND country IN (?" + strings.Repeat(",?", len(sel.Countries)-1) + ")"
		for _, c := range sel.Countries {
			args = append(args, c)
		}
	}

	q := "SELECT year, country, gdp_per_capita FROM gdp_per_capita " + where + " ORDER BY seq"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []dataset.Record{}
	for rows.Next() {
		var r dataset.Record
		if err := rows.Scan(&r.Year, &r.Country, &r.GDPPerCapita); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats summarizes the stored table.
type Stats struct {
	Records    int
	Countries  int
	MinYear    int
	MaxYear    int
	ExportedAt time.Time
}

func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	var minYear, maxYear sql.NullInt64
	err := d.sql.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT country),
			MIN(year),
			MAX(year)
		FROM
			gdp_per_capita;
	`).Scan(&s.Records, &s.Countries, &minYear, &maxYear)
	if err != nil {
		return Stats{}, err
	}
	s.MinYear, s.MaxYear = int(minYear.Int64), int(maxYear.Int64)

	var exportedAt sql.NullString
	err = d.sql.QueryRowContext(ctx, "SELECT exported_at FROM exports ORDER BY id DESC LIMIT 1").Scan(&exportedAt)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, err
	}
	if exportedAt.Valid {
		// Parse SQLite CURRENT_TIMESTAMP format
		// Try "2006-01-02 15:04:05" then RFC3339
		if t, perr := time.Parse("2006-01-02 15:04:05", exportedAt.String); perr == nil {
			s.ExportedAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, exportedAt.String); perr2 == nil {
			s.ExportedAt = t2
		}
	}
	return s, nil
}
