package exportcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/export"
	"github.com/GustavoCaso/gastos/internal/util"
)

type exportCommand struct {
	output string
}

func NewCommand() cli.Command {
	return &exportCommand{}
}

func (c *exportCommand) Description() string {
	return "Writes the current month's expenses to reporte_YYYY-MM.csv"
}

func (c *exportCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.output, "o", ".", "Directory where the report is written")
}

func (c *exportCommand) Run(ctx context.Context, app *cli.App, _ []string) error {
	records, err := app.Ledger.All(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	path, err := export.Month(c.output, records, app.Now())
	if errors.Is(err, export.ErrNoRecords) {
		fmt.Fprintln(app.Out, util.ColorOutput("No hay gastos este mes", "yellow"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("exporting month: %w", err)
	}

	fmt.Fprintf(app.Out, "Reporte creado: %s\n", path)

	return nil
}
