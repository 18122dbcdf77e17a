package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/MJE43/pf-fairness-engine/internal/api"
	"github.com/MJE43/pf-fairness-engine/internal/config"
	"github.com/MJE43/pf-fairness-engine/internal/logging"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Logging  config.Logging   `embed:""`
	Serve    ServeCmd         `cmd:"" help:"Run the HTTP API"`
	Generate GenerateCmd      `cmd:"" help:"Generate a signed game result"`
	Verify   VerifyCmd        `cmd:"" help:"Verify a record token"`
	Simulate SimulateCmd      `cmd:"" help:"Generate many results and print outcome frequencies"`
	Key      KeyCmd           `cmd:"" help:"Manage signing keys in the OS keyring"`
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "fairness: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fairness"),
		kong.Description("Provably-fair game result generator and verifier"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger, err := logging.New(cli.Logging.LogLevel, cli.Logging.LogFormat, os.Stderr)
	ctx.FatalIfErrorf(err)
	api.EngineVersion = version

	err = ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
