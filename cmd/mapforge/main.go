// Command mapforge generates random adventure maps, stores them in SQLite and
// serves them over a read-only HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/mapforge/internal/api"
	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/entropy"
	"github.com/talgya/mapforge/internal/persistence"
	"github.com/talgya/mapforge/internal/rmg"
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		slog.Error("mapforge failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	seed       int64
	width      int
	height     int
	dbPath     string
	load       string
	list       bool
	port       int
	logLevel   string
	logFormat  string
}

func parseFlags(args []string, out io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("mapforge", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
mapforge - random adventure map generator.

Usage:
  mapforge [options]

Options:
`)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to an HCL generation config.")
	fs.Int64Var(&opts.seed, "seed", 0, "Random seed; overrides the config. 0 keeps the config seed.")
	fs.IntVar(&opts.width, "width", 0, "Map width; overrides the config.")
	fs.IntVar(&opts.height, "height", 0, "Map height; overrides the config.")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database to save maps to. Empty disables saving.")
	fs.StringVar(&opts.load, "load", "", "Serve a stored map by id instead of generating one. Requires -db.")
	fs.BoolVar(&opts.list, "list", false, "List stored maps and exit. Requires -db.")
	fs.IntVar(&opts.port, "serve", 0, "Port for the read-only HTTP API. 0 is disabled.")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format: 'text' or 'json'. Default is text on a terminal, json otherwise.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	if (opts.load != "" || opts.list) && opts.dbPath == "" {
		return nil, false, &ExitError{Code: 2, Message: "-load and -list require -db"}
	}
	return opts, false, nil
}

// logOutput receives log records; stdout is reserved for command output.
var logOutput io.Writer = os.Stderr

func setupLogger(out io.Writer, level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if format == "" {
		format = "json"
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "text"
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(out, handlerOpts)))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(out, handlerOpts)))
	default:
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	return nil
}

func loadConfig(opts *options) (config.GenConfig, error) {
	cfg := config.DefaultGenConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return config.GenConfig{}, err
		}
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if err := cfg.Validate(); err != nil {
		return config.GenConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(out io.Writer, args []string) error {
	opts, shouldExit, err := parseFlags(args, out)
	if err != nil || shouldExit {
		return err
	}
	if err := setupLogger(logOutput, opts.logLevel, opts.logFormat); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *persistence.DB
	if opts.dbPath != "" {
		if dir := filepath.Dir(opts.dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
		}
		if db, err = persistence.Open(opts.dbPath); err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", opts.dbPath)
	}

	if opts.list {
		return listMaps(out, db)
	}

	var view api.MapView
	if opts.load != "" {
		g, rec, err := db.LoadMap(opts.load)
		if err != nil {
			return err
		}
		view = api.MapView{ID: rec.ID, Seed: rec.Seed, Grid: g, Reports: json.RawMessage(rec.ReportJSON)}
		slog.Info("map loaded", "id", rec.ID, "seed", rec.Seed, "objects", g.ObjectCount())
	} else {
		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}
		res, err := rmg.Generate(ctx, cfg, entropy.NewSource(os.Getenv("RANDOM_ORG_API_KEY")))
		if err != nil {
			return err
		}
		res.LogSummary()

		if db != nil {
			if err := db.SaveMap(res); err != nil {
				return fmt.Errorf("save map: %w", err)
			}
		}
		reports, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal reports: %w", err)
		}
		view = api.MapView{ID: res.RunID.String(), Seed: res.Seed, Grid: res.Grid, Reports: reports}
	}

	if opts.port == 0 {
		return nil
	}
	srv := &api.Server{
		Map:     view,
		Port:    opts.port,
		Limiter: api.NewRateLimiter(600, time.Minute),
	}
	return srv.ListenAndServe(ctx)
}

func listMaps(out io.Writer, db *persistence.DB) error {
	maps, err := db.ListMaps()
	if err != nil {
		return err
	}
	for _, m := range maps {
		fmt.Fprintf(out, "%s  seed=%d  %dx%d  saved %s\n",
			m.ID, m.Seed, m.Width, m.Height, humanize.Time(m.CreatedAt))
	}
	return nil
}
