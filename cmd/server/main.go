// Command server runs the medical supply request API and offers a few
// maintenance subcommands against the same database.
//
//	server serve --port 8080
//	server orders list
//	server orders create --supply Insulin --quantity "10 units" --priority Urgent
//	server orders status 3 IN_DELIVERY
//	server orders delete 3
//	server profile show
//
// Settings come from MEDSUPPLY_* variables (and .env); flags override them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sakif/medsupply/internal/config"
	"github.com/sakif/medsupply/internal/repository/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "medsupply",
		Usage: "medical supply requests and user profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides MEDSUPPLY_DB_PATH)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides MEDSUPPLY_LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "optional dotenv file",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			ordersCommand(),
			profileCommand(),
		},
	}
}

// loadConfig merges environment settings with the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
}

// ensureDBDir creates the directory holding the database file.
func ensureDBDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}

// openStore is used by the one-shot subcommands. Their logs go to stderr
// so stdout carries only the command output.
func openStore(c *cli.Context) (*sqlite.DB, *slog.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureDBDir(cfg.DBPath); err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	db, err := sqlite.New(c.Context, cfg.DBPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, logger, nil
}
