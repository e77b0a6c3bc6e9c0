// Package main implements qcctl, a CLI for running the QC training pipeline against a local database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"qcinsights/internal/config"
	"qcinsights/internal/container"
	trainingapp "qcinsights/internal/application/training"
	"qcinsights/server"
)

var (
	dbPath     string
	tablesPath string
	logLevel   string

	version = "dev"

	// app заполняется в PersistentPreRunE
	app *container.Container
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qcctl",
	Short: "Run the QC feedback training pipeline from the command line",
	Long: `qcctl imports QC feedback workbooks into the training database,
mines defect patterns and prints statistics and suggestions.

Environment variables from the server configuration are honored;
flags take precedence.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: openContainer,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "training database path (default TRAINING_DATABASE_PATH or training.db)")
	rootCmd.PersistentFlags().StringVar(&tablesPath, "tables", "", "YAML tables file (default built-in tables)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// openContainer собирает конфигурацию и контейнер для подкоманд
func openContainer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if tablesPath != "" {
		cfg.TablesPath = tablesPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Логи в stderr, результат команд в stdout
	server.Logger = server.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(server.Logger)

	c, err := container.NewContainer(cfg, container.WithLogger(server.Logger))
	if err != nil {
		return err
	}
	if err := c.Initialize(); err != nil {
		return err
	}
	app = c
	return nil
}

func useCase() (*trainingapp.UseCase, error) {
	if app == nil {
		return nil, fmt.Errorf("container is not initialized")
	}
	return app.GetTrainingUseCase()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printJSON печатает результат команды
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
