// Package clitest builds App values backed by temporary storage for
// subcommand tests.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GustavoCaso/gastos/internal/category"
	"github.com/GustavoCaso/gastos/internal/classify"
	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/config"
	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/llm"
	"github.com/GustavoCaso/gastos/internal/testutil"
	"github.com/GustavoCaso/gastos/internal/util"
)

// Now is the fixed clock of every test App: Wednesday 2024-05-15.
var Now = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

// NewApp returns an App with a CSV ledger and a category registry in a
// temporary directory. input is what the command reads from stdin.
func NewApp(t *testing.T, generator llm.Generator, input string) (*cli.App, *bytes.Buffer) {
	t.Helper()

	util.DisableColors(true)

	dir := t.TempDir()
	logger := testutil.TestLogger(t)

	conf := &config.Config{
		Ledger:         filepath.Join(dir, "gastos.csv"),
		Storage:        config.StorageCSV,
		CategoriesFile: filepath.Join(dir, "categorias.json"),
		Currency:       "USD",
		LLM:            config.LLMConfig{Provider: config.ProviderOpenAI},
	}

	store, err := ledger.Open(context.Background(), conf, logger)
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	registry := category.NewRegistry(conf.CategoriesFile, logger)
	out := &bytes.Buffer{}

	return &cli.App{
		Config:     conf,
		Ledger:     store,
		Categories: registry,
		Classifier: classify.New(generator, registry, logger),
		Logger:     logger,
		In:         strings.NewReader(input),
		Out:        out,
		Now:        func() time.Time { return Now },
	}, out
}

// Seed appends records to the App ledger.
func Seed(t *testing.T, app *cli.App, records ...ledger.Record) {
	t.Helper()

	for _, r := range records {
		if err := app.Ledger.Append(context.Background(), r); err != nil {
			t.Fatalf("seeding ledger: %v", err)
		}
	}
}

// Records returns the App ledger contents.
func Records(t *testing.T, app *cli.App) []ledger.Record {
	t.Helper()

	records, err := app.Ledger.All(context.Background())
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	return records
}

// Reply returns a generator that always answers with reply.
func Reply(reply string) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return reply, nil
	})
}
