package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func shiftCmd(flags *globalFlags) *cobra.Command {
	var (
		at     int
		insert int
		remove int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "shift HOST --at N (--insert K | --delete K)",
		Short: "Insert or delete blank lines and move the ranges after them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if (insert > 0) == (remove > 0) {
				return errors.New("exactly one of --insert and --delete is required")
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

			if at < 1 || at > e.LineCount() {
				return fmt.Errorf("line %d outside 1-%d", at, e.LineCount())
			}
			start, err := e.LineStart(at)
			if err != nil {
				return err
			}

			var applied bool
			if insert > 0 {
				applied, err = e.Insert(start, strings.Repeat("\n", insert))
			} else {
				last := at + remove
				if last > e.LineCount() {
					return fmt.Errorf("cannot delete %d lines from line %d of %d", remove, at, e.LineCount())
				}
				end, lerr := e.LineStart(last)
				if lerr != nil {
					return lerr
				}
				applied, err = e.Delete(start, end)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !applied {
				fmt.Fprintln(out, "rejected: the edit touches a locked range")
				return nil
			}
			fmt.Fprintln(out, "applied")
			for _, s := range e.RecentShifts(1) {
				fmt.Fprintf(out, "  %s\n", s)
			}
			if dryRun {
				return nil
			}
			return e.Save(ctx)
		},
	}

	f := cmd.Flags()
	f.IntVar(&at, "at", 0, "line the edit starts on")
	f.IntVar(&insert, "insert", 0, "number of blank lines to insert before --at")
	f.IntVar(&remove, "delete", 0, "number of lines to delete starting at --at")
	f.BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
