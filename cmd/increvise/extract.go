package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Evthron/Increvise-sub000/internal/extract"
)

func extractCmd(flags *globalFlags) *cobra.Command {
	var lines string

	cmd := &cobra.Command{
		Use:   "extract HOST --lines A-B",
		Short: "Move lines of a host into a new child note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			first, last, err := parseLineRange(lines)
			if err != nil {
				return err
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

			if err := selectLines(e, first, last); err != nil {
				return err
			}

			x := extract.NewExtractor(
				extract.NewAllocator(a.lib, extract.WithAllocatorLogger(a.logger)),
				a.lib, a.logger)
			r, err := x.Extract(ctx, e)
			if err != nil {
				return err
			}
			if err := e.Save(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d-%d\n", r.Identifier, r.ChildPath, r.CurrentStart, r.CurrentEnd)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lines, "lines", "l", "", "lines to extract, as A-B or A")
	_ = cmd.MarkFlagRequired("lines")
	return cmd
}
