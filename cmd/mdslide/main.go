package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mdslide/internal"
	pkgconfig "github.com/starford/mdslide/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runBuild(_ context.Context, cmd *cli.Command) error {
	source := cmd.Args().First()
	if source == "" {
		return errors.New("missing FILE argument")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithDebug(cmd.Bool("debug")),
	}
	if _, err := internal.Build(source, opts...); err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithDebug(cmd.Bool("debug")),
	}
	if dir := cmd.Args().First(); dir != "" {
		opts = append(opts, internal.WithRoot(dir))
	}

	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("serve error: %w", err)
	}
	return nil
}

// newLogger is the JSON stdout logger installed before argument handling,
// so usage errors are logged in the same format as the rest of the run.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "mdslide",
		Usage:     "Split a Markdown deck into standalone HTML slides and serve them",
		ArgsUsage: "FILE",
		Action:    runBuild,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "mdslide.yaml",
				Value:       "mdslide.yaml",
				Sources:     cli.EnvVars("MDSLIDE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Activate debug logging",
				Sources: cli.EnvVars("MDSLIDE_DEBUG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Serve a built deck over HTTP (default directory: build.output_dir, ./build)",
				ArgsUsage: "[directory]",
				Action:    runServe,
			},
		},
	}
}

func main() {
	slog.SetDefault(newLogger())

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
