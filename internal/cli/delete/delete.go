package deletecmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/util"
)

type deleteCommand struct {
	action string
}

func NewCommand() cli.Command {
	return &deleteCommand{}
}

func (c *deleteCommand) Description() string {
	return "Removes the last expense or exact duplicate expenses from the ledger"
}

func (c *deleteCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.action, "a", "", "What action to perform. Supported values are: last, duplicates")
}

func (c *deleteCommand) Run(ctx context.Context, app *cli.App, _ []string) error {
	switch c.action {
	case "last":
		last, err := app.Ledger.DeleteLast(ctx)
		if err != nil {
			return fmt.Errorf("deleting last expense: %w", err)
		}

		if last == nil {
			fmt.Fprintln(app.Out, "No hay gastos para borrar")
			return nil
		}

		currency, _ := util.LookupCurrency(app.Config.Currency)
		fmt.Fprintf(app.Out, "Borrado: %s %s %s %s\n",
			util.ColorOutput(last.Date.Format("2006-01-02"), "faint"),
			currency.Format(last.Amount),
			last.Category,
			last.Description,
		)
	case "duplicates":
		removed, err := app.Ledger.DeleteDuplicates(ctx)
		if err != nil {
			return fmt.Errorf("deleting duplicates: %w", err)
		}

		app.Logger.Info("duplicates removed", "count", removed)
		fmt.Fprintf(app.Out, "Duplicados eliminados: %d\n", removed)
	default:
		return fmt.Errorf("unsupported action: %q", c.action)
	}

	return nil
}
