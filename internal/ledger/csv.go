package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GustavoCaso/gastos/internal/logger"
	"github.com/GustavoCaso/gastos/internal/util"
)

// CSVStore keeps the ledger in a comma separated file with a header row.
type CSVStore struct {
	path   string
	logger *logger.Logger
	now    func() time.Time
}

func NewCSV(path string, logger *logger.Logger) *CSVStore {
	return &CSVStore{
		path:   path,
		logger: logger.With("component", "ledger", "storage", "csv"),
		now:    time.Now,
	}
}

func (s *CSVStore) Path() string {
	return s.path
}

// Init creates the ledger with its header row. An existing empty file gets
// the header too; a file with content is left alone.
func (s *CSVStore) Init(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err == nil {
		if info.Size() > 0 {
			return nil
		}
		s.logger.Info("writing header to empty ledger", "path", s.path)
		return s.rewrite(nil)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	s.logger.Info("creating ledger", "path", s.path)

	return s.rewrite(nil)
}

func (s *CSVStore) Append(ctx context.Context, record Record) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	if record.Date.IsZero() {
		record.Date = util.DateOnly(s.now())
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err = w.Write(record.Row()); err != nil {
		return err
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("appending to ledger: %w", err)
	}

	s.logger.Debug("record appended", "category", record.Category, "amount", record.Amount)

	return nil
}

func (s *CSVStore) All(_ context.Context) ([]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, err
	}
	defer file.Close()

	return s.read(file)
}

func (s *CSVStore) read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}

	cols := columnIndex(header)
	records := []Record{}
	line := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.logger.Debug("dropping malformed row", "line", line, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger line %d: %w", line, err)
		}

		date, err := ParseDate(cols.value(row, ColumnDate))
		if err != nil {
			s.logger.Debug("dropping row with invalid date", "line", line, "error", err)
			continue
		}

		records = append(records, Record{
			Date:        date,
			Amount:      ParseAmount(cols.value(row, ColumnAmount)),
			Category:    cols.value(row, ColumnCategory),
			Description: cols.value(row, ColumnDescription),
		})
	}

	return records, nil
}

func (s *CSVStore) DeleteLast(ctx context.Context) (*Record, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	last := records[len(records)-1]
	if err = s.rewrite(records[:len(records)-1]); err != nil {
		return nil, err
	}

	return &last, nil
}

func (s *CSVStore) DeleteDuplicates(ctx context.Context) (int, error) {
	records, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	kept, removed := dedupe(records)
	if removed == 0 {
		return 0, nil
	}

	if err = s.rewrite(kept); err != nil {
		return 0, err
	}

	return removed, nil
}

func (s *CSVStore) Close() error {
	return nil
}

// rewrite replaces the ledger with records through a temporary file in the
// same directory.
func (s *CSVStore) rewrite(records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".gastos-*.csv")
	if err != nil {
		return fmt.Errorf("creating temporary ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err = w.Write(Header); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range records {
		if err = w.Write(r.Row()); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()

	if err = w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

type columns map[string]int

func columnIndex(header []string) columns {
	c := make(columns, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		c[name] = i
	}
	return c
}

func (c columns) value(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
