package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/apcooley/grafty/internal"
	"github.com/apcooley/grafty/internal/catalog"
	"github.com/apcooley/grafty/internal/indexer"
	"github.com/apcooley/grafty/internal/mcpserver"
	"github.com/apcooley/grafty/internal/nodeservice"
	"github.com/apcooley/grafty/internal/workspace"
	pkgconfig "github.com/apcooley/grafty/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "grafty",
		Usage: "Address structural units in source files by selector and apply atomic line-range patches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("GRAFTY_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			resolveCommand(),
			queryCommand(),
			showCommand(),
			patchCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// logger builds the slog logger the local commands share.
func logger(cmd *cli.Command) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API with a persistent node catalog and file watcher",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("GRAFTY_CONFIG_FILE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := internal.NewDefaultConfig()
			if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Usage:   "Workspace root to index and patch",
				Value:   ".",
				Sources: cli.EnvVars("GRAFTY_WORKSPACE"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Path to the SQLite node catalog",
				Value:   "./grafty.db",
				Sources: cli.EnvVars("GRAFTY_CATALOG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ix := indexer.Default()
			ws, err := workspace.NewFS(cmd.String("workspace"), ix.Extensions())
			if err != nil {
				return err
			}
			db, err := catalog.Open(cmd.String("catalog"))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := catalog.Sync(db, ws, ix, logger(cmd)); err != nil {
				return fmt.Errorf("initial sync: %w", err)
			}
			svc := nodeservice.NewService(ws, db, ix)
			return mcpserver.New(svc).ServeStdio()
		},
	}
}
