package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Evthron/Increvise-sub000/internal/engine"
	"github.com/Evthron/Increvise-sub000/internal/renderer"
	"github.com/Evthron/Increvise-sub000/internal/watcher"
)

func showCmd(flags *globalFlags) *cobra.Command {
	var (
		tui    bool
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "show HOST",
		Short: "Print a host with each child shown in place of its range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if tui && follow {
				return errors.New("--tui and --follow cannot be combined")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, a) }()

			e, err := a.openHost(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			switch {
			case tui:
				return runViewer(e)
			case follow:
				if !a.cfg.Watch.Enabled {
					return errors.New("watching is disabled in the configuration")
				}
				return a.follow(ctx, e, cmd.OutOrStdout())
			default:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), e.VisibleText())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&tui, "tui", false, "open a terminal viewer")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "reprint whenever a child changes")
	return cmd
}

func runViewer(e *engine.Engine) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	v := renderer.NewViewer(screen, e.View().Lines(e), renderer.WithTitle(path.Base(e.Host())))
	return v.Run()
}

// follow prints the host, then reprints it after every child reload until
// ctx is done.
func (a *app) follow(ctx context.Context, e *engine.Engine, out io.Writer) error {
	fsw, err := watcher.NewFolderWatcher(watcher.WithFolderLogger(a.logger))
	if err != nil {
		return err
	}
	inner := watcher.NewDebouncedWatcher(fsw, a.cfg.Watch.Debounce.Std())

	reloaded := make(chan string, 1)
	cw := watcher.NewChildWatcher(e, a.lib, a.files, inner,
		watcher.WithLogger(a.logger),
		watcher.WithReloadHook(func(child string, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- child:
			default:
			}
		}))

	if _, err := fmt.Fprintln(out, e.VisibleText()); err != nil {
		_ = inner.Close()
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cw.Run(ctx) }()

	for {
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case child := <-reloaded:
			fmt.Fprintf(out, "\n--- %s changed ---\n%s\n", child, e.VisibleText())
		}
	}
}
