package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/coherp/demandplan/pkg/application/planning"
	"github.com/coherp/demandplan/pkg/infrastructure/repositories/postgres"
	"github.com/coherp/demandplan/pkg/interfaces/cli/output"
)

// Config holds configuration for the forecast command
type Config struct {
	DatabaseURL string
	Weeks       int
	Mode        string
	Format      string
	TopProducts int
	Verbose     bool
}

// ForecastCommand runs a full planning run against the ERP database
type ForecastCommand struct {
	config Config
}

// NewForecastCommand creates a forecast command with the given configuration
func NewForecastCommand(config Config) *ForecastCommand {
	return &ForecastCommand{config: config}
}

// Execute runs the forecast command
func (c *ForecastCommand) Execute(ctx context.Context) error {
	if c.config.DatabaseURL == "" {
		return fmt.Errorf("no database url configured; set DATABASE_URL or pass -dsn")
	}

	mode, err := parseMode(c.config.Mode)
	if err != nil {
		return err
	}

	planConfig := planning.DefaultConfig()
	if c.config.Weeks > 0 {
		planConfig.HorizonWeeks = c.config.Weeks
	}
	if c.config.TopProducts > 0 {
		planConfig.TopProducts = c.config.TopProducts
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !c.config.Verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	db, err := postgres.Open(c.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	pipeline := planning.NewPipeline(
		planConfig,
		postgres.NewHistoryRepository(db, planConfig.DefaultWastagePercent),
		postgres.NewBomRepository(db),
		postgres.NewStockRepository(db),
		logger,
	)

	result, err := pipeline.Run(ctx, mode)
	if err != nil {
		return fmt.Errorf("planning run failed: %w", err)
	}

	return output.Generate(result, output.Config{
		Format: c.config.Format,
		Writer: os.Stdout,
	})
}

func parseMode(mode string) (planning.Mode, error) {
	switch mode {
	case "product", "":
		return planning.AllocationMode, nil
	case "fabric":
		return planning.DirectMode, nil
	default:
		return 0, fmt.Errorf("unsupported mode %q (expected product or fabric)", mode)
	}
}
