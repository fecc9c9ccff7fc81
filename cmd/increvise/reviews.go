package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func reviewsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews",
		Short: "List review items in due order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, a) }()

			items, err := a.lib.ReviewItems(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DUE\tID\tCHILD\tHOST")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					it.DueAt.Local().Format(time.DateTime), it.Identifier, it.ChildPath, it.HostPath)
			}
			return w.Flush()
		},
	}
}
