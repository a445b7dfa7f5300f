package main

import (
	"fmt"
	"io"

	"storelocator/internal/locator"
	"storelocator/internal/stores"

	"github.com/spf13/cobra"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <store-id>",
		Short: "Show one store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			store, ok := stores.Find(all, args[0])
			if !ok {
				return fmt.Errorf("store %q not found", args[0])
			}
			details := opts.cfg.GetAppBaseURL() + "/" + locator.NewLinks(opts.cfg).DetailsURL(store.ID)
			return opts.write(cmd.OutOrStdout(), store, func(w io.Writer) error {
				return writeStoreDetails(w, store, details)
			})
		},
	}
}
