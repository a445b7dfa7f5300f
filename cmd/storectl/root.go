package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"storelocator/internal/geo"
	"storelocator/internal/stores"
	"storelocator/platform/config"
	"storelocator/platform/logger"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by all subcommands.
type options struct {
	apiURL  string
	timeout time.Duration
	lat     float64
	lon     float64
	output  string
	verbose bool

	cfg *config.Config
	log *logger.Logger
}

// cliStoreConfig overrides the store API settings from flags.
type cliStoreConfig struct {
	*config.Config
	url     string
	timeout time.Duration
}

func (c cliStoreConfig) GetStoreAPIURL() string            { return c.url }
func (c cliStoreConfig) GetStoreAPITimeout() time.Duration { return c.timeout }

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Query the store directory",
		Long:          `Fetches the store directory, sorts it by distance from a reference point and prints it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if !cmd.Flags().Changed("api-url") {
				opts.apiURL = cfg.GetStoreAPIURL()
			}
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = cfg.GetStoreAPITimeout()
			}
			if !cmd.Flags().Changed("lat") {
				opts.lat = cfg.GetFallbackLat()
			}
			if !cmd.Flags().Changed("lon") {
				opts.lon = cfg.GetFallbackLon()
			}
			opts.log = logger.Nop()
			if opts.verbose {
				opts.log = logger.NewWithWriter("development", cmd.ErrOrStderr())
			}
			if _, ok := geo.Distance(opts.lat, opts.lon, opts.lat, opts.lon); !ok {
				return fmt.Errorf("invalid reference coordinate %v,%v", opts.lat, opts.lon)
			}
			switch opts.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", opts.output)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "store directory URL (default from STORE_API_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default from STORE_API_TIMEOUT)")
	flags.Float64Var(&opts.lat, "lat", 0, "reference latitude (default from FALLBACK_LAT)")
	flags.Float64Var(&opts.lon, "lon", 0, "reference longitude (default from FALLBACK_LON)")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(newListCmd(opts), newShowCmd(opts))
	return root
}

// load fetches and normalizes the directory relative to the flags.
func (o *options) load(ctx context.Context) ([]stores.Store, error) {
	cfg := cliStoreConfig{Config: o.cfg, url: o.apiURL, timeout: o.timeout}
	repo := stores.NewRepository(stores.NewClient(cfg, o.log), cfg, o.log)
	return repo.Load(ctx, o.lat, o.lon)
}

func (o *options) write(w io.Writer, v any, text func(io.Writer) error) error {
	return writeOutput(w, o.output, v, text)
}
