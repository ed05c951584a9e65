package report

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/ledger"
	internalReport "github.com/GustavoCaso/gastos/internal/report"
	"github.com/GustavoCaso/gastos/internal/util"
)

// content holds our static content.
//
//go:embed templates/*
var content embed.FS

const defaultMovements = 10

type reportCommand struct {
	from       string
	to         string
	categories string
	period     string
	currency   string
	movements  int
}

func NewCommand() cli.Command {
	return &reportCommand{}
}

func (c *reportCommand) Description() string {
	return "Displays today, week and month totals with a category breakdown"
}

func (c *reportCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.from, "from", "", "First day to include (YYYY-MM-DD)")
	fs.StringVar(&c.to, "to", "", "Last day to include (YYYY-MM-DD)")
	fs.StringVar(&c.categories, "categories", "", "Comma separated categories to include (default all)")
	fs.StringVar(&c.period, "period", string(internalReport.ScopeMonth), "Highlighted period. Supported values are: day, week, month")
	fs.StringVar(&c.currency, "currency", "", "Display currency. Supported values are: USD, COP")
	fs.IntVar(&c.movements, "n", defaultMovements, "How many movements to list (0 lists all)")
}

type view struct {
	internalReport.Report
	Currency  util.Currency
	Highlight internalReport.Period
	Movements []ledger.Record
	Hidden    int
}

func (c *reportCommand) Run(ctx context.Context, app *cli.App, _ []string) error {
	scope, ok := internalReport.ParseScope(c.period)
	if !ok {
		return fmt.Errorf("unsupported period %q", c.period)
	}

	filter, err := c.filter()
	if err != nil {
		return err
	}

	code := c.currency
	if code == "" {
		code = app.Config.Currency
	}
	currency, known := util.LookupCurrency(code)
	if !known {
		app.Logger.Warn("unknown currency, using generic format", "currency", code)
	}

	records, err := app.Ledger.All(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	r := internalReport.Generate(records, filter, app.Now())

	v := view{
		Report:    r,
		Currency:  currency,
		Highlight: r.Summary.Period(scope),
		Movements: r.Records,
	}
	if c.movements > 0 && len(v.Movements) > c.movements {
		v.Hidden = len(v.Movements) - c.movements
		v.Movements = v.Movements[:c.movements]
	}

	return renderTemplate(app.Out, "report.tmpl", v)
}

func (c *reportCommand) filter() (internalReport.Filter, error) {
	var (
		filter internalReport.Filter
		err    error
	)

	if c.from != "" {
		if filter.From, err = ledger.ParseDate(c.from); err != nil {
			return filter, fmt.Errorf("invalid -from: %w", err)
		}
	}

	if c.to != "" {
		if filter.To, err = ledger.ParseDate(c.to); err != nil {
			return filter, fmt.Errorf("invalid -to: %w", err)
		}
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, fmt.Errorf("-to %s is before -from %s", c.to, c.from)
	}

	for _, name := range strings.Split(c.categories, ",") {
		if name = strings.TrimSpace(name); name != "" {
			filter.Categories = append(filter.Categories, name)
		}
	}

	return filter, nil
}

var periodTitles = map[internalReport.Scope]string{
	internalReport.ScopeDay:   "HOY",
	internalReport.ScopeWeek:  "ESTA SEMANA",
	internalReport.ScopeMonth: "ESTE MES",
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(ledger.DateLayout)
}

func formatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

func renderTemplate(out io.Writer, templateName string, v view) error {
	templateFuncs := template.FuncMap{
		"formatMoney": func(value decimal.Decimal) string {
			return v.Currency.Symbol + util.FormatDecimal(value, ",", ".", v.Currency.Decimals)
		},
		"formatAmount":     v.Currency.Format,
		"formatDate":       formatDate,
		"formatPercentage": formatPercentage,
		"colorOutput":      util.ColorOutput,
		"periodTitle":      func(s internalReport.Scope) string { return periodTitles[s] },
	}

	tmpl, err := content.ReadFile(path.Join("templates", templateName))
	if err != nil {
		return err
	}
	t := template.Must(template.New(templateName).Funcs(templateFuncs).Parse(string(tmpl)))

	return t.Execute(out, v)
}
