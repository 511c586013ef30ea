package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/coherp/demandplan/pkg/interfaces/cli/commands"
)

func main() {
	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	var (
		dsn     = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (defaults to DATABASE_URL)")
		weeks   = flag.Int("weeks", 8, "Forecast horizon in weeks")
		mode    = flag.String("mode", "product", "Planning mode: product (allocation) or fabric (direct)")
		format  = flag.String("format", "text", "Output format: text, json")
		top     = flag.Int("top", 10, "Number of products to model-forecast")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	config := commands.Config{
		DatabaseURL: *dsn,
		Weeks:       *weeks,
		Mode:        *mode,
		Format:      *format,
		TopProducts: *top,
		Verbose:     *verbose,
	}

	cmd := commands.NewForecastCommand(config)
	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
