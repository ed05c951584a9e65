package report

import (
	"cmp"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/util"
)

type Scope string

const (
	ScopeDay   Scope = "day"
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
)

func ParseScope(value string) (Scope, bool) {
	switch Scope(value) {
	case ScopeDay, ScopeWeek, ScopeMonth:
		return Scope(value), true
	}
	return "", false
}

// Filter narrows the ledger before aggregation. Zero dates leave that side
// of the range open and an empty Categories list matches every category.
type Filter struct {
	From       time.Time
	To         time.Time
	Categories []string
}

func (f Filter) Match(record ledger.Record) bool {
	if !util.InRange(record.Date, f.From, f.To) {
		return false
	}

	if len(f.Categories) == 0 {
		return true
	}

	return slices.Contains(f.Categories, record.Category)
}

// Apply returns the records matching filter, in ledger order.
func Apply(records []ledger.Record, filter Filter) []ledger.Record {
	matched := []ledger.Record{}
	for _, r := range records {
		if filter.Match(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

type Period struct {
	Scope   Scope
	Start   time.Time
	End     time.Time
	Total   decimal.Decimal
	Records []ledger.Record
}

type Summary struct {
	Today Period
	Week  Period
	Month Period
}

func (s Summary) Period(scope Scope) Period {
	switch scope {
	case ScopeDay:
		return s.Today
	case ScopeWeek:
		return s.Week
	default:
		return s.Month
	}
}

// Window returns the inclusive calendar bounds of scope relative to now.
func Window(scope Scope, now time.Time) (time.Time, time.Time) {
	today := util.DateOnly(now)

	switch scope {
	case ScopeDay:
		return today, today
	case ScopeWeek:
		return util.StartOfWeek(now), today
	default:
		return util.StartOfMonth(now), today
	}
}

// Aggregate totals records over the day, week and month that contain now.
func Aggregate(records []ledger.Record, now time.Time) Summary {
	return Summary{
		Today: period(records, ScopeDay, now),
		Week:  period(records, ScopeWeek, now),
		Month: period(records, ScopeMonth, now),
	}
}

func period(records []ledger.Record, scope Scope, now time.Time) Period {
	start, end := Window(scope, now)
	matched := Apply(records, Filter{From: start, To: end})

	return Period{
		Scope:   scope,
		Start:   start,
		End:     end,
		Total:   Sum(matched),
		Records: matched,
	}
}

// Sum adds the amounts of records. Amounts that are not finite count as 0.
func Sum(records []ledger.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(util.DecimalFromFloat(r.Amount))
	}
	return total
}

const percentageOfTotal = 100

type CategoryTotal struct {
	Name              string
	Total             decimal.Decimal
	Count             int
	Average           decimal.Decimal
	PercentageOfTotal float64
	LastTransaction   time.Time
}

// ByCategory groups records by category, largest total first and ties by
// name.
func ByCategory(records []ledger.Record) []CategoryTotal {
	index := map[string]int{}
	totals := []CategoryTotal{}
	overall := decimal.Zero

	for _, r := range records {
		amount := util.DecimalFromFloat(r.Amount)
		overall = overall.Add(amount)

		i, ok := index[r.Category]
		if !ok {
			i = len(totals)
			index[r.Category] = i
			totals = append(totals, CategoryTotal{Name: r.Category, Total: decimal.Zero})
		}

		c := &totals[i]
		c.Total = c.Total.Add(amount)
		c.Count++
		if r.Date.After(c.LastTransaction) {
			c.LastTransaction = r.Date
		}
	}

	for i := range totals {
		c := &totals[i]
		c.Average = c.Total.Div(decimal.NewFromInt(int64(c.Count)))
		if !overall.IsZero() {
			c.PercentageOfTotal = c.Total.Mul(decimal.NewFromInt(percentageOfTotal)).Div(overall).InexactFloat64()
		}
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		if n := b.Total.Cmp(a.Total); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return totals
}

type Report struct {
	Filter     Filter
	Records    []ledger.Record
	Total      decimal.Decimal
	Summary    Summary
	Categories []CategoryTotal
	// FirstDate and LastDate bound the whole ledger, before filtering.
	FirstDate time.Time
	LastDate  time.Time
	// Duplicates counts records identical to an earlier one.
	Duplicates            int
	AverageSpendingPerDay decimal.Decimal
}

// Generate filters records and computes every figure the report shows.
// Records are listed newest first.
func Generate(records []ledger.Record, filter Filter, now time.Time) Report {
	filtered := Apply(records, filter)

	newestFirst := slices.Clone(filtered)
	slices.SortStableFunc(newestFirst, func(a, b ledger.Record) int {
		return b.Date.Compare(a.Date)
	})

	total := Sum(filtered)

	report := Report{
		Filter:     filter,
		Records:    newestFirst,
		Total:      total,
		Summary:    Aggregate(filtered, now),
		Categories: ByCategory(filtered),
		Duplicates: ledger.CountDuplicates(records),
	}

	report.FirstDate, report.LastDate = bounds(records)

	if len(filtered) > 0 {
		first, last := bounds(filtered)
		if !filter.From.IsZero() {
			first = filter.From
		}
		if !filter.To.IsZero() {
			last = filter.To
		}
		days := calendarDays(first, last) + 1
		report.AverageSpendingPerDay = total.Div(decimal.NewFromInt(int64(days)))
	}

	return report
}

func bounds(records []ledger.Record) (time.Time, time.Time) {
	var first, last time.Time
	for _, r := range records {
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if last.IsZero() || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}

const hoursInDay = 24

// calendarDays returns the calendar difference between times (t2 - t1) as days.
func calendarDays(t1, t2 time.Time) int {
	days := util.DateOnly(t2).Sub(util.DateOnly(t1)) / (hoursInDay * time.Hour)
	if days < 0 {
		return 0
	}
	return int(days)
}
