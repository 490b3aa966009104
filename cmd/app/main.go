package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/revue/internal"
	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/mcpserver"
	pkgconfig "github.com/starford/revue/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg,
		pkgconfig.WithEnvPrefix(internal.EnvPrefix),
		pkgconfig.Optional(),
	); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	core, err := internal.Setup(internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	defer core.Close()

	return mcpserver.New(core.Service, version).ServeStdio()
}

func runDue(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	core, err := internal.Setup(internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	defer core.Close()

	b, err := core.Service.Watchlist(ctx)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	fmt.Fprint(os.Stdout, renderDue(b))
	return nil
}

func runDescribe(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("describe: a cadence line is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loc, err := cfg.Review.Location()
	if err != nil {
		return err
	}

	d := cadence.Describe(cmd.Args().First(), time.Now().In(loc))
	fmt.Fprint(os.Stdout, renderDescription(d))
	if !d.Valid {
		return fmt.Errorf("invalid cadence: %s", d.Error)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "revue",
		Usage:   "Review scheduling for Markdown notes with meta:: lines",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE", "REVUE_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the REST API, SSE stream and file watcher",
				Action: run,
			},
			{
				Name:   "mcp",
				Usage:  "Serve review tools over MCP on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:   "due",
				Usage:  "Print notes due for review",
				Action: runDue,
			},
			{
				Name:      "describe",
				Usage:     "Explain a review cadence line",
				ArgsUsage: "<cadence line>",
				Action:    runDescribe,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
