package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"dcatracker/internal/apiclient"
	"dcatracker/internal/cli"
	"dcatracker/internal/infra"
	"dcatracker/internal/pricefeed"
)

func main() {
	_ = godotenv.Load()
	cfg := infra.LoadClientConfig()

	plain := flag.Bool("plain", false, "print raw markdown instead of styled output")
	verbose := flag.Bool("v", false, "log debug information to stderr")

	logger := infra.NewConsoleLogger(os.Stderr, zerolog.WarnLevel)
	env := &cli.Env{
		Records: apiclient.New(cfg.APIURL, cfg.Token, cfg.HTTPTimeout),
		Out:     os.Stdout,
		Err:     os.Stderr,
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, env)

	flag.Parse()
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	env.Plain = *plain
	env.Prices = pricefeed.NewClient(cfg.PriceFeedURL, cfg.PriceCurrency, cfg.HTTPTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
