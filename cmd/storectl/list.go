package main

import (
	"fmt"
	"io"

	"storelocator/internal/locator"
	"storelocator/platform/sanitize"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stores nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			list := locator.Filter(all, sanitize.SearchTerm(query))
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			return opts.write(cmd.OutOrStdout(), list, func(w io.Writer) error {
				if len(list) == 0 {
					_, err := fmt.Fprintln(w, "No stores found.")
					return err
				}
				return writeStoreTable(w, list)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name, city or zip")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n stores (0 for all)")
	return cmd
}
