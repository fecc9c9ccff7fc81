package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func rangesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ranges HOST",
		Short: "List the extracted ranges of a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHILD\tSTORED\tSHOWN\tLINES")
			for _, r := range e.Records() {
				lines := "-"
				if r.Loaded {
					lines = fmt.Sprint(r.ChildLineCount())
				}
				fmt.Fprintf(w, "%s\t%s\t%d-%d\t%d-%d\t%s\n",
					r.Identifier, r.ChildPath,
					r.OriginalStart, r.OriginalEnd,
					r.CurrentStart, r.CurrentEnd, lines)
			}
			if err := e.ProjectionError(); err != nil {
				fmt.Fprintf(w, "\nranges disabled: %v\n", err)
			}
			return w.Flush()
		},
	}
}
