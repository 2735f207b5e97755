package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/ashvale/lattice/internal"
	"github.com/ashvale/lattice/internal/mcpserver"
	"github.com/ashvale/lattice/internal/noteservice"
	"github.com/ashvale/lattice/internal/stats"
	"github.com/ashvale/lattice/internal/storage"
	pkgconfig "github.com/ashvale/lattice/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func newService(cfg *internal.Config) (*noteservice.Service, error) {
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, err
	}
	return noteservice.NewService(store), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	return mcpserver.New(svc).ServeStdio()
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	report, err := svc.CheckIntegrity(ctx, cmd.String("scope"))
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runGraph(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if cmd.Bool("tags") {
		g, _, err := svc.TagGraph(ctx)
		if err != nil {
			return err
		}
		return printJSON(g)
	}
	g, _, err := svc.NoteGraph(ctx)
	if err != nil {
		return err
	}
	return printJSON(g)
}

func runBacklinks(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("note path argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	bl, _, err := svc.Backlinks(ctx, path)
	if err != nil {
		return err
	}
	return printJSON(bl)
}

func runRename(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	result, err := svc.Rename(ctx, cmd.String("from"), cmd.String("to"), cmd.Bool("dry-run"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSimilar(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("note path argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	results, _, err := svc.FindSimilar(ctx, path, cfg.Similar.Limit, cfg.Similar.Threshold)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runStats(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	snap, err := stats.Collect(svc.Store())
	if err != nil {
		return err
	}
	if cmd.Bool("rollup") && cfg.Stats.Path != "" {
		store, err := stats.Open(cfg.Stats.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		snap, err = store.Record(snap)
		if err != nil {
			return err
		}
	}
	return printJSON(snap)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "lattice",
		Usage:  "Knowledge graph over a directory of Markdown notes: links, backlinks, integrity, similarity",
		Flags:  []cli.Flag{configFlag},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server with SSE vault events",
				Flags:  []cli.Flag{configFlag},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Flags:  []cli.Flag{configFlag},
				Action: runMCP,
			},
			{
				Name:  "check",
				Usage: "Report broken links and orphaned notes",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "scope", Usage: "Limit the broken-link pass to one note"},
				},
				Action: runCheck,
			},
			{
				Name:  "graph",
				Usage: "Print the note graph (or tag graph) as JSON",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "tags", Usage: "Build the tag co-occurrence graph instead"},
				},
				Action: runGraph,
			},
			{
				Name:      "backlinks",
				Usage:     "List notes referencing the given note",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{configFlag},
				Action:    runBacklinks,
			},
			{
				Name:  "rename",
				Usage: "Move a note and rewrite referencing wikilinks",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "from", Required: true, Usage: "Current note path"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "New note path"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Preview without changing files"},
				},
				Action: runRename,
			},
			{
				Name:      "similar",
				Usage:     "Rank vault notes by similarity to the given note",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{configFlag},
				Action:    runSimilar,
			},
			{
				Name:  "stats",
				Usage: "Print vault statistics, optionally recording a rollup",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "rollup", Usage: "Append the snapshot to the rollup history"},
				},
				Action: runStats,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
