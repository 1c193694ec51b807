package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trafficwatch/internal/platform/config"
)

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var origin, destination string
	var strategy int
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Look up the current driving time once, without recording it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts, (*config.Config).ValidateProvider)
			if err != nil {
				return err
			}
			defer s.Close()

			var strategyOpt *int
			if cmd.Flags().Changed("strategy") {
				strategyOpt = &strategy
			}
			out, err := s.app.RouteCLI.Lookup(cmd.Context(), origin, destination, strategyOpt)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.2f h\t%.2f km\t%s\n", out.Duration, out.Distance, out.Timestamp)
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "origin lng,lat (default from config)")
	cmd.Flags().StringVar(&destination, "destination", "", "destination lng,lat (default from config)")
	cmd.Flags().IntVar(&strategy, "strategy", config.DefaultStrategy, "AMap driving strategy")
	return cmd
}

func newGeocodeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(opts, (*config.Config).ValidateProvider)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.app.RouteCLI.Geocode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", out.Location, out.FormattedAddress)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
