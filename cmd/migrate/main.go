package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"dcatracker/internal/infra"
	"dcatracker/internal/migrations"
)

func main() {
	var (
		dsnFlag     string
		listFlag    bool
		timeoutFlag time.Duration
	)

	flag.StringVar(&dsnFlag, "dsn", "", "postgres connection string (defaults to DATABASE_URL)")
	flag.BoolVar(&listFlag, "list", false, "print the embedded migrations and exit")
	flag.DurationVar(&timeoutFlag, "timeout", time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()

	all, err := migrations.Load()
	if err != nil {
		exitWithError(fmt.Errorf("load migrations: %w", err))
	}
	if listFlag {
		for _, m := range all {
			fmt.Println(m.Version)
		}
		return
	}

	dsn := strings.TrimSpace(dsnFlag)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		exitWithError(errors.New("DATABASE_URL or -dsn is required"))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	applied, err := migrations.Apply(ctx, db, all)
	if err != nil {
		exitWithError(err)
	}
	if len(applied) == 0 {
		logger.Info().Msg("schema up to date")
		return
	}
	logger.Info().Strs("versions", applied).Msg("migrations applied")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
