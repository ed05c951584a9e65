package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/gastos/internal/ledger"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Wednesday 2024-05-15 at noon.
var now = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func record(date time.Time, amount float64, category, description string) ledger.Record {
	return ledger.Record{Date: date, Amount: amount, Category: category, Description: description}
}

func assertTotal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestAggregate(t *testing.T) {
	records := []ledger.Record{
		record(day(2024, time.May, 15), 10, "Comida", "almuerzo"),
		record(day(2024, time.May, 13), 20, "Transporte", "bus"),
		record(day(2024, time.May, 12), 5, "Comida", "pan"),
		record(day(2024, time.May, 1), 100, "Hogar", "arriendo"),
		record(day(2024, time.April, 30), 1000, "Hogar", "abril"),
		record(day(2024, time.May, 16), 7, "Otros", "futuro"),
	}

	summary := Aggregate(records, now)

	assertTotal(t, "today", summary.Today.Total, "10")
	assertTotal(t, "week", summary.Week.Total, "30")
	assertTotal(t, "month", summary.Month.Total, "135")

	if len(summary.Today.Records) != 1 || len(summary.Week.Records) != 2 || len(summary.Month.Records) != 4 {
		t.Errorf("unexpected record counts %d/%d/%d",
			len(summary.Today.Records), len(summary.Week.Records), len(summary.Month.Records))
	}

	if !summary.Week.Start.Equal(day(2024, time.May, 13)) || !summary.Week.End.Equal(day(2024, time.May, 15)) {
		t.Errorf("week window = %s..%s", summary.Week.Start, summary.Week.End)
	}

	if !summary.Month.Start.Equal(day(2024, time.May, 1)) {
		t.Errorf("month start = %s", summary.Month.Start)
	}

	if summary.Period(ScopeWeek).Scope != ScopeWeek || summary.Period(ScopeDay).Scope != ScopeDay {
		t.Error("Period() returned the wrong window")
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, records := range [][]ledger.Record{nil, {}} {
		summary := Aggregate(Apply(records, Filter{From: day(2024, time.January, 1), Categories: []string{"Comida"}}), now)

		for _, p := range []Period{summary.Today, summary.Week, summary.Month} {
			if !p.Total.IsZero() {
				t.Errorf("%s total = %s, want 0", p.Scope, p.Total)
			}
			if p.Records == nil || len(p.Records) != 0 {
				t.Errorf("%s records = %#v, want empty", p.Scope, p.Records)
			}
		}
	}
}

func TestAggregateMondayBoundary(t *testing.T) {
	monday := time.Date(2024, time.May, 13, 18, 0, 0, 0, time.UTC)
	records := []ledger.Record{record(day(2024, time.May, 13), 42, "Comida", "lunes")}

	summary := Aggregate(records, monday)

	assertTotal(t, "today", summary.Today.Total, "42")
	assertTotal(t, "week", summary.Week.Total, "42")
	assertTotal(t, "month", summary.Month.Total, "42")
}

func TestAggregateDecimalSums(t *testing.T) {
	records := []ledger.Record{
		record(day(2024, time.May, 15), 0.1, "Comida", "a"),
		record(day(2024, time.May, 15), 0.2, "Comida", "b"),
	}

	summary := Aggregate(records, now)
	assertTotal(t, "today", summary.Today.Total, "0.3")
}

func TestApply(t *testing.T) {
	records := []ledger.Record{
		record(day(2024, time.May, 1), 1, "Comida", "a"),
		record(day(2024, time.May, 10), 2, "Hogar", "b"),
		record(day(2024, time.May, 20), 3, "Comida", "c"),
		record(day(2024, time.June, 1), 4, "Salud", "d"),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"a", "b", "c", "d"}},
		{
			name:   "inclusive range",
			filter: Filter{From: day(2024, time.May, 10), To: day(2024, time.May, 20)},
			want:   []string{"b", "c"},
		},
		{name: "open end", filter: Filter{From: day(2024, time.May, 20)}, want: []string{"c", "d"}},
		{name: "categories", filter: Filter{Categories: []string{"Comida", "Salud"}}, want: []string{"a", "c", "d"}},
		{
			name: "range and category",
			filter: Filter{
				From:       day(2024, time.May, 5),
				To:         day(2024, time.May, 31),
				Categories: []string{"Comida"},
			},
			want: []string{"c"},
		},
		{name: "case sensitive category", filter: Filter{Categories: []string{"comida"}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(records, tt.filter)

			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Description != tt.want[i] {
					t.Errorf("record %d = %s, want %s", i, r.Description, tt.want[i])
				}
			}
		})
	}
}

func TestByCategory(t *testing.T) {
	records := []ledger.Record{
		record(day(2024, time.May, 1), 10, "Hogar", "a"),
		record(day(2024, time.May, 3), 30, "Comida", "b"),
		record(day(2024, time.May, 2), 10, "Comida", "c"),
		record(day(2024, time.May, 4), 40, "Entretenimiento", "d"),
		record(day(2024, time.May, 5), 10, "Salud", "e"),
	}

	got := ByCategory(records)

	wantOrder := []string{"Comida", "Entretenimiento", "Hogar", "Salud"}
	if len(got) != len(wantOrder) {
		t.Fatalf("ByCategory() returned %d categories, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Errorf("category %d = %s, want %s", i, got[i].Name, name)
		}
	}

	comida := got[0]
	assertTotal(t, "Comida total", comida.Total, "40")
	assertTotal(t, "Comida average", comida.Average, "20")

	if comida.Count != 2 {
		t.Errorf("Comida count = %d, want 2", comida.Count)
	}
	if comida.PercentageOfTotal != 40 {
		t.Errorf("Comida percentage = %v, want 40", comida.PercentageOfTotal)
	}
	if !comida.LastTransaction.Equal(day(2024, time.May, 3)) {
		t.Errorf("Comida last transaction = %s", comida.LastTransaction)
	}

	if empty := ByCategory(nil); len(empty) != 0 {
		t.Errorf("ByCategory(nil) = %v, want empty", empty)
	}
}

func TestGenerate(t *testing.T) {
	records := []ledger.Record{
		record(day(2024, time.May, 2), 10, "Comida", "a"),
		record(day(2024, time.May, 14), 20, "Transporte", "b"),
		record(day(2024, time.May, 15), 5, "Comida", "c"),
		record(day(2024, time.May, 2), 10, "Comida", "a"),
		record(day(2024, time.March, 1), 99, "Salud", "d"),
	}

	filter := Filter{From: day(2024, time.May, 1), To: day(2024, time.May, 15)}
	r := Generate(records, filter, now)

	if len(r.Records) != 4 {
		t.Fatalf("Generate() kept %d records, want 4", len(r.Records))
	}

	if r.Records[0].Description != "c" || r.Records[1].Description != "b" {
		t.Errorf("records are not newest first: %+v", r.Records)
	}

	assertTotal(t, "total", r.Total, "45")
	assertTotal(t, "today", r.Summary.Today.Total, "5")
	assertTotal(t, "week", r.Summary.Week.Total, "25")
	assertTotal(t, "month", r.Summary.Month.Total, "45")
	assertTotal(t, "average per day", r.AverageSpendingPerDay, "3")

	if r.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", r.Duplicates)
	}

	if !r.FirstDate.Equal(day(2024, time.March, 1)) || !r.LastDate.Equal(day(2024, time.May, 15)) {
		t.Errorf("ledger bounds = %s..%s", r.FirstDate, r.LastDate)
	}

	if len(r.Categories) != 2 || r.Categories[0].Name != "Comida" {
		t.Errorf("unexpected categories %+v", r.Categories)
	}
}

func TestGenerateEmpty(t *testing.T) {
	r := Generate(nil, Filter{}, now)

	if len(r.Records) != 0 || len(r.Categories) != 0 {
		t.Errorf("expected an empty report, got %+v", r)
	}

	if !r.Total.IsZero() || !r.AverageSpendingPerDay.IsZero() {
		t.Errorf("expected zero totals, got %s and %s", r.Total, r.AverageSpendingPerDay)
	}
}

func TestParseScope(t *testing.T) {
	for _, value := range []string{"day", "week", "month"} {
		if _, ok := ParseScope(value); !ok {
			t.Errorf("ParseScope(%s) not accepted", value)
		}
	}

	if _, ok := ParseScope("year"); ok {
		t.Error("ParseScope(year) accepted")
	}
}
