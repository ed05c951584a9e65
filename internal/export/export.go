package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/util"
)

// ErrNoRecords is returned by Month when the month has no records.
var ErrNoRecords = errors.New("no records this month")

// CSV exports records in ledger format.
// format: Fecha,Monto,Categoria,Descripcion
func CSV(writer io.Writer, records []ledger.Record) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, ledger.Header)

	for _, r := range records {
		rows = append(rows, r.Row())
	}

	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}

	return nil
}

// MonthFileName is the name of the export for the month containing now.
func MonthFileName(now time.Time) string {
	return fmt.Sprintf("reporte_%s.csv", now.Format("2006-01"))
}

// Month writes every record dated in the calendar month of now to
// dir/reporte_YYYY-MM.csv and returns the file path.
func Month(dir string, records []ledger.Record, now time.Time) (string, error) {
	first, last := util.GetMonthDates(int(now.Month()), now.Year(), now)

	month := []ledger.Record{}
	for _, r := range records {
		if util.InRange(r.Date, first, last) {
			month = append(month, r)
		}
	}

	if len(month) == 0 {
		return "", ErrNoRecords
	}

	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, MonthFileName(now))

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err = CSV(file, month); err != nil {
		file.Close()
		return "", err
	}

	return path, file.Close()
}
