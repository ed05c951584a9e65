package category

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/GustavoCaso/gastos/internal/category"
	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/util"
)

type categoryCommand struct {
	action string
	name   string
}

func NewCommand() cli.Command {
	return &categoryCommand{}
}

func (c *categoryCommand) Description() string {
	return "Allows to interact with the expense categories."
}

func (c *categoryCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.action, "a", "list", "What action to perform. Supported values are: list, add, inspect")
	fs.StringVar(&c.name, "name", "", "Name of the category to add")
}

func (c *categoryCommand) Run(ctx context.Context, app *cli.App, _ []string) error {
	switch c.action {
	case "list":
		list(app.Out, app.Categories.Load())
		return nil
	case "add":
		categories, err := app.Categories.Add(c.name)
		if err != nil {
			return fmt.Errorf("adding category: %w", err)
		}
		fmt.Fprintln(app.Out, util.ColorOutput("Categoria agregada", "green"))
		list(app.Out, categories)
		return nil
	case "inspect":
		records, err := app.Ledger.All(ctx)
		if err != nil {
			return fmt.Errorf("reading ledger: %w", err)
		}
		currency, _ := util.LookupCurrency(app.Config.Currency)
		inspect(app.Out, records, currency)
		return nil
	default:
		return fmt.Errorf("unsupported action: %s", c.action)
	}
}

func list(out io.Writer, categories []string) {
	for _, name := range categories {
		if category.IsBase(name) {
			fmt.Fprintln(out, name)
		} else {
			fmt.Fprintf(out, "%s %s\n", name, util.ColorOutput("(extra)", "faint"))
		}
	}
}

type fallbackGroup struct {
	count   int
	records []ledger.Record
}

// inspect lists the records that ended up in the fallback category, grouped
// by description, most frequent first.
func inspect(out io.Writer, records []ledger.Record, currency util.Currency) {
	groups := map[string]*fallbackGroup{}
	keys := []string{}

	for _, r := range records {
		if r.Category != category.Fallback {
			continue
		}

		g, ok := groups[r.Description]
		if !ok {
			g = &fallbackGroup{}
			groups[r.Description] = g
			keys = append(keys, r.Description)
		}
		g.count++
		g.records = append(g.records, r)
	}

	if len(keys) == 0 {
		fmt.Fprintf(out, "No hay gastos en %s\n", category.Fallback)
		return
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return groups[keys[i]].count > groups[keys[j]].count
	})

	var total int
	for _, k := range keys {
		g := groups[k]
		fmt.Fprintf(out, "%s -> %d\n", k, g.count)
		total += g.count

		for _, r := range g.records {
			fmt.Fprintf(out, "\t[%s] %s\n", r.Date.Format(ledger.DateLayout), currency.Format(r.Amount))
		}
	}

	fmt.Fprintf(out, "\nHay un total de %d gastos en %s\n", total, category.Fallback)
}
