package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/GustavoCaso/gastos/internal/category"
	"github.com/GustavoCaso/gastos/internal/classify"
	"github.com/GustavoCaso/gastos/internal/cli"
	"github.com/GustavoCaso/gastos/internal/cli/add"
	categoryCmd "github.com/GustavoCaso/gastos/internal/cli/category"
	deletecmd "github.com/GustavoCaso/gastos/internal/cli/delete"
	exportcmd "github.com/GustavoCaso/gastos/internal/cli/export"
	"github.com/GustavoCaso/gastos/internal/cli/report"
	"github.com/GustavoCaso/gastos/internal/config"
	"github.com/GustavoCaso/gastos/internal/ledger"
	"github.com/GustavoCaso/gastos/internal/llm"
	"github.com/GustavoCaso/gastos/internal/logger"
	"github.com/GustavoCaso/gastos/internal/util"
)

var (
	configPath string
	envPath    string
)

var subcommands = map[string]cli.Command{
	"add":      add.NewCommand(),
	"report":   report.NewCommand(),
	"category": categoryCmd.NewCommand(),
	"delete":   deletecmd.NewCommand(),
	"export":   exportcmd.NewCommand(),
}

var subcommandsFlagSets = map[string]*flag.FlagSet{}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("subcommand is required\n")
		printUsage()

		os.Exit(1)
	}

	for c, cLogic := range subcommands {
		fset := flag.NewFlagSet(c, flag.ExitOnError)
		fset.StringVar(&configPath, "c", "gastos.toml", "Configuration file (TOML or YAML)")
		fset.StringVar(&envPath, "env", ".env", "Environment file with API keys")

		cLogic.SetFlags(fset)

		subcommandsFlagSets[c] = fset
	}

	commandName := os.Args[1]
	command, ok := subcommands[commandName]
	if !ok {
		if strings.Contains(commandName, "help") {
			printHelp()

			os.Exit(0)
		}
		log.Fatalf("unsupported command %s. \nUse 'help' command to print information about supported commands\n", commandName)
	}

	fset := subcommandsFlagSets[commandName]
	_ = fset.Parse(os.Args[2:])

	if err := config.LoadDotEnv(envPath); err != nil {
		log.Fatalf("Unable to load the environment file: %s", err.Error())
	}

	conf, err := config.Parse(configPath)
	if err != nil {
		log.Fatalf("Unable to parse the configuration: %s", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := logger.New(conf.Logger)

	app, closeApp, err := newApp(ctx, conf, logger)
	if err != nil {
		logger.Fatal("Unable to start", "error", err)
	}

	err = command.Run(ctx, app, fset.Args())
	closeApp()

	if err != nil {
		fmt.Fprintln(os.Stderr, util.ColorOutput(fmt.Sprintf("Error: %s", err.Error()), "red"))
		os.Exit(1)
	}
}

func newApp(ctx context.Context, conf *config.Config, logger *logger.Logger) (*cli.App, func(), error) {
	generator, err := llm.New(conf.LLM, logger)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		logger.Warn("no API key found, classification will use fallback values", "provider", conf.LLM.Provider)
		generator = nil
	} else if err != nil {
		return nil, nil, err
	}

	store, err := ledger.Open(ctx, conf, logger)
	if err != nil {
		return nil, nil, err
	}

	registry := category.NewRegistry(conf.CategoriesFile, logger)

	app := &cli.App{
		Config:     conf,
		Ledger:     store,
		Categories: registry,
		Classifier: classify.New(generator, registry, logger),
		Logger:     logger,
		In:         os.Stdin,
		Out:        os.Stdout,
		Now:        time.Now,
	}

	closeApp := func() {
		if err := store.Close(); err != nil {
			logger.Error("closing ledger", "error", err)
		}
	}

	return app, closeApp, nil
}

func printHelp() {
	printUsage()

	names := make([]string, 0, len(subcommands))
	for c := range subcommands {
		names = append(names, c)
	}
	sort.Strings(names)

	for _, c := range names {
		fmt.Printf("subcommand <%s>: %s\n", c, subcommands[c].Description())
		subcommandsFlagSets[c].PrintDefaults()
		fmt.Println()
		fmt.Println()
	}
}

func printUsage() {
	fmt.Printf("usage: gastos <subcommand> [flags]\n\n")
}
