package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/config"
	"github.com/Evthron/Increvise-sub000/internal/database"
	"github.com/Evthron/Increvise-sub000/internal/engine"
	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/logging"
	"github.com/Evthron/Increvise-sub000/internal/store"
	"github.com/Evthron/Increvise-sub000/internal/store/vfs"
)

// app holds what every command opens: configuration, logger, database and
// library.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     database.Database
	files  *vfs.OSFS
	lib    *store.Library

	closeLog func() error
}

func openApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	files := vfs.NewOSFS(cfg.Library.Root)
	if err := files.MkdirAll(".increvise", 0o755); err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("prepare library: %w", err)
	}

	db, err := database.NewDatabase(ctx, cfg.Database.ResolvedURL(files.Root()), database.WithLogger(logger))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	lib, err := store.Open(ctx, files, db,
		store.WithLogger(logger),
		store.WithLoadConcurrency(cfg.Library.LoadConcurrency))
	if err != nil {
		_ = db.Close()
		_ = closeLog()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: db, files: files, lib: lib, closeLog: closeLog}, nil
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	opts := []config.Option{config.WithDotEnv(flags.envFile)}
	switch {
	case flags.configFile != "":
		opts = append(opts, config.WithRequiredFile(flags.configFile))
	case flags.root != "":
		opts = append(opts, config.WithFile(config.DefaultFile(flags.root)))
	default:
		opts = append(opts, config.WithFile(config.DefaultFile(".")))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, err
	}
	if flags.root != "" {
		cfg.Library.Root = flags.root
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func (a *app) Close() error {
	return errors.Join(a.db.Close(), a.closeLog())
}

// openHost loads a host and its records into a new engine.
func (a *app) openHost(ctx context.Context, host string) (*engine.Engine, error) {
	text, err := a.lib.ReadHostContent(ctx, host)
	if err != nil {
		return nil, err
	}
	records, err := a.lib.ReadRangeRecords(ctx, host)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithHost(host),
		engine.WithStore(a.lib),
		engine.WithLogger(a.logger),
		engine.WithLenientGeometry(a.cfg.Projection.LenientGeometry),
		engine.WithMaxShifts(a.cfg.Editor.MaxShifts),
	}
	switch strings.ToLower(a.cfg.Editor.LineEnding) {
	case "lf":
		opts = append(opts, engine.WithLineEnding(buffer.LineEndingLF))
	case "crlf":
		opts = append(opts, engine.WithLineEnding(buffer.LineEndingCRLF))
	}
	if a.cfg.Editor.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}

	e := engine.New(opts...)
	if err := e.OpenDocument(text, records); err != nil {
		if !engine.IsGeometryError(err) {
			return nil, err
		}
		// The document is open without ranges; report and carry on.
		a.logger.Warn("ranges disabled", zap.String("host", host), zap.Error(err))
	}
	return e, nil
}

// selectLines selects whole lines first..last of e.
func selectLines(e *engine.Engine, first, last int) error {
	if first < 1 || last < first || last > e.LineCount() {
		return fmt.Errorf("line range %d-%d outside 1-%d", first, last, e.LineCount())
	}
	start, err := e.LineStart(first)
	if err != nil {
		return err
	}
	end, err := e.LineStart(last)
	if err != nil {
		return err
	}
	end += engine.ByteOffset(len(e.LineText(last)))
	if end == start {
		return fmt.Errorf("line %d is empty", first)
	}
	sel := e.Select(engine.Selection{Anchor: start, Head: end})
	if sel.IsEmpty() {
		return fmt.Errorf("lines %d-%d touch a locked range", first, last)
	}
	return nil
}

// parseLineRange reads "A-B" or "A".
func parseLineRange(s string) (first, last int, err error) {
	a, b, found := strings.Cut(s, "-")
	if _, err := fmt.Sscan(a, &first); err != nil {
		return 0, 0, fmt.Errorf("bad line range %q", s)
	}
	last = first
	if found {
		if _, err := fmt.Sscan(b, &last); err != nil {
			return 0, 0, fmt.Errorf("bad line range %q", s)
		}
	}
	return first, last, nil
}

func joinClose(err error, a *app) error {
	return errors.Join(err, a.Close())
}
