package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"trafficwatch/internal/bootstrap"
	"trafficwatch/internal/platform/config"
	"trafficwatch/internal/platform/logging"
	uiapp "trafficwatch/internal/ui/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "trafficwatch",
		Short:         "Sample AMap driving times on a fixed cadence and chart them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./config.yaml when present)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before the environment is read")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newOnceCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newRouteCmd(opts))
	root.AddCommand(newGeocodeCmd(opts))
	return root
}

// session is a loaded App plus the resources released when a command ends.
type session struct {
	app    *bootstrap.App
	logger hclog.Logger
	closer io.Closer
}

func (s session) Close() {
	_ = s.app.Close()
	_ = s.closer.Close()
}

// loadSession reads configuration, applies check and wires the application.
// A failing check is fatal for the command and is logged before returning.
func loadSession(opts *rootOptions, check func(*config.Config) error) (session, error) {
	cfg, err := config.NewLoader(opts.configPath).WithEnvFile(opts.envFile).Load()
	if err != nil {
		return session{}, err
	}
	logger, closer, err := logging.New(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
		JSON:  cfg.Logging.JSON,
	})
	if err != nil {
		return session{}, err
	}
	if check != nil {
		if err := check(cfg); err != nil {
			logger.Error("configuration error", "error", err)
			_ = closer.Close()
			return session{}, err
		}
	}
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return session{}, err
	}
	return session{app: app, logger: logger, closer: closer}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample on every cadence boundary until interrupted",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := loadSession(opts, (*config.Config).ValidateMonitor)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext()
			defer stop()

			addr := metricsAddr
			if addr == "" {
				addr = s.app.Config.Server.MetricsAddr
			}
			if addr != "" {
				go func() {
					if err := s.app.ServeMetrics(ctx, addr); err != nil {
						s.logger.Error("metrics endpoint stopped", "error", err)
					}
				}()
			}

			err = s.app.MonitorCLI.Run(ctx)
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				s.logger.Info("traffic monitor stopped by user")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address while running")
	return cmd
}

func newOnceCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single sampling cycle now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts, (*config.Config).ValidateMonitor)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.app.MonitorCLI.RunOnce(cmd.Context())
			if asJSON {
				if encErr := writeJSON(cmd.OutOrStdout(), out); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return fmt.Errorf("cycle %s: %w", out.Outcome, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded %.2f h at %s %s (%d samples)\n",
				out.Sample.Duration, out.Sample.Date, out.Sample.Time, out.Samples)
			if out.Latest != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chart %s\n", out.Snapshot)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cycle result as JSON")
	return cmd
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite index from the history file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.app.MonitorCLI.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d samples\n", out.Indexed)
			return nil
		},
	}
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Redraw the chart from the stored history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.app.MonitorCLI.Render(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rendered %d samples to %s and %s\n", out.Samples, out.Snapshot, out.Latest)
			return nil
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var httpAddr, grpcAddr string
	var schedule bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, /metrics and the gRPC history service",
		RunE: func(_ *cobra.Command, _ []string) error {
			check := (*config.Config).Validate
			if schedule {
				check = (*config.Config).ValidateMonitor
			}
			s, err := loadSession(opts, check)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext()
			defer stop()

			serveOpts := bootstrap.ServeOptions{
				HTTPAddr: s.app.Config.Server.HTTPAddr,
				GRPCAddr: s.app.Config.Server.GRPCAddr,
				Schedule: schedule,
			}
			if httpAddr != "" {
				serveOpts.HTTPAddr = httpAddr
			}
			if grpcAddr != "" {
				serveOpts.GRPCAddr = grpcAddr
			}
			if err := s.app.Serve(ctx, serveOpts); err != nil {
				return err
			}
			s.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (default from config)")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "also run the sampling loop in this process")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	var limit int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the terminal dashboard over the stored history",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := loadSession(opts, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext()
			defer stop()
			return uiapp.Run(ctx, s.app.MonitorCLI, interval, limit)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "refresh interval (0 disables polling)")
	cmd.Flags().IntVar(&limit, "limit", 200, "most recent samples to list (0 lists all)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
