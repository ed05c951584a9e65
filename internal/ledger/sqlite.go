package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// import sqlite driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/GustavoCaso/gastos/internal/logger"
	"github.com/GustavoCaso/gastos/internal/util"
)

// SQLiteStore keeps the ledger in a single SQLite table. Insertion order is
// the id order.
type SQLiteStore struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

func NewSQLite(source string, logger *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", source)
	if err != nil {
		return nil, err
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(context.Background(), "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "ledger", "storage", "sqlite"),
		now:    time.Now,
	}, nil
}

var migrations = []struct {
	name string
	up   string
}{
	{
		name: "Create expenses table",
		up: `
			CREATE TABLE IF NOT EXISTS expenses
			(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			amount REAL NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL
			);`,
	},
	{
		name: "Index expenses by date",
		up:   `CREATE INDEX IF NOT EXISTS expenses_date ON expenses(date);`,
	},
}

// Init brings the schema up to date.
func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion := 0
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err = row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		s.logger.Info("Applying migration", "version", version, "name", migration.name)

		if err = s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migration.up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				version, s.now().Unix(),
			)
			return err
		}); err != nil {
			return fmt.Errorf("migration %d failed: %w", version, err)
		}
	}

	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, record Record) error {
	if record.Date.IsZero() {
		record.Date = util.DateOnly(s.now())
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (date, amount, category, description) VALUES (?, ?, ?, ?)",
		record.Date.Format(DateLayout), record.Amount, record.Category, record.Description,
	)
	if err != nil {
		return fmt.Errorf("appending to ledger: %w", err)
	}

	return nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, amount, category, description FROM expenses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			id     int64
			date   string
			record Record
		)

		if err = rows.Scan(&id, &date, &record.Amount, &record.Category, &record.Description); err != nil {
			return nil, err
		}

		record.Date, err = ParseDate(date)
		if err != nil {
			s.logger.Debug("dropping row with invalid date", "id", id, "error", err)
			continue
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) DeleteLast(ctx context.Context) (*Record, error) {
	var last *Record

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		id, record, err := lastValid(ctx, tx)
		if err != nil || record == nil {
			return err
		}

		if _, err = tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
			return err
		}

		last = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return last, nil
}

// lastValid returns the newest row with a readable date, the same row All
// lists last. Rows with unreadable dates are skipped.
func lastValid(ctx context.Context, tx *sql.Tx) (int64, *Record, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, date, amount, category, description FROM expenses ORDER BY id DESC")
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			date   string
			record Record
		)

		if err = rows.Scan(&id, &date, &record.Amount, &record.Category, &record.Description); err != nil {
			return 0, nil, err
		}

		if record.Date, err = ParseDate(date); err != nil {
			continue
		}

		return id, &record, nil
	}

	return 0, nil, rows.Err()
}

func (s *SQLiteStore) DeleteDuplicates(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM expenses
		WHERE id NOT IN (
			SELECT MIN(id) FROM expenses GROUP BY date, amount, category, description
		)`)
	if err != nil {
		return 0, err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(removed), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			return rErr
		}
		return err
	}

	return tx.Commit()
}
