package add

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/llm"
	"github.com/GustavoCaso/gastos/internal/util"
)

var errEmptyText = errors.New("expense text is required")

type addCommand struct {
	model    string
	category string
	yes      bool
}

func NewCommand() cli.Command {
	return &addCommand{}
}

func (c *addCommand) Description() string {
	return "Classifies a free-text expense and appends it to the ledger"
}

func (c *addCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.model, "m", "", "Model used for classification (defaults to the configured one)")
	fs.StringVar(&c.category, "category", "", "Override the classified category")
	fs.BoolVar(&c.yes, "y", false, "Save without asking for confirmation")
}

func (c *addCommand) Run(ctx context.Context, app *cli.App, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errEmptyText
	}

	if c.category != "" && !app.Categories.Set().Contains(c.category) {
		return fmt.Errorf("unknown category %q", c.category)
	}

	model := c.model
	if model == "" {
		model = app.Config.LLM.Model
	}
	if model == "" {
		model = llm.DefaultModel(app.Config.LLM.Provider)
	}

	result, err := app.Classifier.Classify(ctx, text, model)
	if err != nil {
		return err
	}

	if c.category != "" {
		result.Category = c.category
		result.CategoryDefaulted = false
	}

	currency, _ := util.LookupCurrency(app.Config.Currency)

	fmt.Fprintf(app.Out, "Monto:       %s\n", currency.Format(result.Amount))
	fmt.Fprintf(app.Out, "Categoria:   %s\n", result.Category)
	fmt.Fprintf(app.Out, "Descripcion: %s\n", result.Description)

	switch {
	case result.Fallback:
		fmt.Fprintln(app.Out, util.ColorOutput("No se pudo interpretar la respuesta, se usaron valores por defecto", "yellow"))
	case result.Defaulted():
		fmt.Fprintln(app.Out, util.ColorOutput("Algunos campos se completaron con valores por defecto", "yellow"))
	}

	if !c.yes && !confirm(app.In, app.Out) {
		fmt.Fprintln(app.Out, "Descartado")
		return nil
	}

	record := ledger.Record{
		Date:        util.DateOnly(app.Now()),
		Amount:      result.Amount,
		Category:    result.Category,
		Description: result.Description,
	}

	if err = app.Ledger.Append(ctx, record); err != nil {
		return fmt.Errorf("saving expense: %w", err)
	}

	app.Logger.Info("expense saved",
		"category", record.Category,
		"amount", record.Amount,
		"defaulted", result.Defaulted(),
	)

	fmt.Fprintln(app.Out, util.ColorOutput("Gasto guardado", "green"))

	return nil
}

// confirm asks before saving. An empty line counts as yes; closed input
// counts as no.
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Guardar? [S/n] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "s", "si", "sí", "y", "yes":
		return true
	default:
		return false
	}
}
