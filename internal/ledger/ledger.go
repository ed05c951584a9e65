package ledger

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GustavoCaso/gastos/internal/config"
	"github.com/GustavoCaso/gastos/internal/logger"
	"github.com/GustavoCaso/gastos/internal/util"
)

const DateLayout = "2006-01-02"

const (
	ColumnDate        = "Fecha"
	ColumnAmount      = "Monto"
	ColumnCategory    = "Categoria"
	ColumnDescription = "Descripcion"
)

// Header is the first row of every ledger file.
var Header = []string{ColumnDate, ColumnAmount, ColumnCategory, ColumnDescription}

// Record is one persisted expense.
type Record struct {
	Date        time.Time
	Amount      float64
	Category    string
	Description string
}

// Row returns the record in ledger column order.
func (r Record) Row() []string {
	return []string{
		r.Date.Format(DateLayout),
		FormatAmount(r.Amount),
		r.Category,
		r.Description,
	}
}

func (r Record) key() recordKey {
	return recordKey{
		date:        r.Date.Format(DateLayout),
		amount:      r.Amount,
		category:    r.Category,
		description: r.Description,
	}
}

type recordKey struct {
	date        string
	amount      float64
	category    string
	description string
}

type Store interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, record Record) error
	All(ctx context.Context) ([]Record, error)
	// DeleteLast removes the newest record and returns it, or nil when the
	// ledger is empty.
	DeleteLast(ctx context.Context) (*Record, error)
	// DeleteDuplicates removes records identical to an earlier one and
	// returns how many were removed.
	DeleteDuplicates(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by conf.Storage, initialized and ready
// to use.
func Open(ctx context.Context, conf *config.Config, logger *logger.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch conf.Storage {
	case config.StorageCSV, "":
		store = NewCSV(conf.Ledger, logger)
	case config.StorageSQLite:
		store, err = NewSQLite(conf.Ledger, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported storage %q", conf.Storage)
	}

	if err = store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// ParseDate reads a ledger date. Timestamps are accepted and truncated to
// their calendar day.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return util.DateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// ParseAmount reads a ledger amount; anything that is not a finite number
// becomes 0.
func ParseAmount(value string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

// FormatAmount writes whole amounts with one decimal ("45.0") and keeps
// the shortest exact representation otherwise.
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// CountDuplicates returns how many records are identical to an earlier one.
func CountDuplicates(records []Record) int {
	_, removed := dedupe(records)
	return removed
}

func dedupe(records []Record) ([]Record, int) {
	seen := make(map[recordKey]struct{}, len(records))
	kept := make([]Record, 0, len(records))

	for _, r := range records {
		k := r.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}

	return kept, len(records) - len(kept)
}
