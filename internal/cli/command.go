package cli

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/GustavoCaso/gastos/internal/category"
	"github.com/GustavoCaso/gastos/internal/classify"
	"github.com/GustavoCaso/gastos/internal/config"
	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/logger"
)

type Command interface {
	SetFlags(fset *flag.FlagSet)
	Description() string
	Run(ctx context.Context, app *App, args []string) error
}

// App carries every collaborator a subcommand may need. It is built once in
// main from the parsed configuration.
type App struct {
	Config     *config.Config
	Ledger     ledger.Store
	Categories *category.Registry
	Classifier *classify.Classifier
	Logger     *logger.Logger

	In  io.Reader
	Out io.Writer
	Now func() time.Time
}
