package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	monitorinadapter "trafficwatch/internal/modules/monitor/adapter/in"
	"trafficwatch/internal/modules/monitor/dto"
)

const remoteTimeout = 10 * time.Second

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Query recorded samples"}

	var limit int
	var since, remote string
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded samples, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}
			var samples []dto.SampleOutput
			if remote != "" {
				samples, err = remoteHistory(cmd.Context(), remote, limit, from)
			} else {
				s, loadErr := loadSession(opts, nil)
				if loadErr != nil {
					return loadErr
				}
				defer s.Close()
				samples, err = s.app.MonitorCLI.History(cmd.Context(), limit, from)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), samples)
			}
			printSamples(cmd.OutOrStdout(), samples)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "only the most recent n samples (0 lists all)")
	list.Flags().StringVar(&since, "since", "", "look-back duration (6h) or RFC3339 instant")
	list.Flags().StringVar(&remote, "remote", "", "query a running server's gRPC history service at host:port")
	list.Flags().BoolVar(&asJSON, "json", false, "print samples as JSON")

	var statsSince, statsUntil string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Summarise recorded travel times",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			from, err := parseSince(statsSince, now)
			if err != nil {
				return err
			}
			to, err := parseSince(statsUntil, now)
			if err != nil {
				return err
			}
			s, err := loadSession(opts, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.app.MonitorCLI.Stats(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if out.Count == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no samples")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "samples\t%d\nmin\t%.2f h\nmean\t%.2f h\nmax\t%.2f h\nfirst\t%s\nlast\t%s\n",
				out.Count, out.Min, out.Mean, out.Max,
				out.First.Format(time.RFC3339), out.Last.Format(time.RFC3339))
			return nil
		},
	}
	stats.Flags().StringVar(&statsSince, "since", "", "look-back duration or RFC3339 lower bound")
	stats.Flags().StringVar(&statsUntil, "until", "", "look-back duration or RFC3339 upper bound")

	history.AddCommand(list, stats)
	return history
}

func remoteHistory(ctx context.Context, addr string, limit int, since time.Time) ([]dto.SampleOutput, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial history service: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	req := &monitorinadapter.ListSamplesRequest{Limit: int32(limit)}
	if !since.IsZero() {
		req.Since = since.Format(time.RFC3339)
	}
	out, err := monitorinadapter.NewHistoryServiceClient(conn).ListSamples(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list samples from %s: %w", addr, err)
	}
	return out.Samples, nil
}

func printSamples(w io.Writer, samples []dto.SampleOutput) {
	if len(samples) == 0 {
		_, _ = fmt.Fprintln(w, "no samples")
		return
	}
	for _, s := range samples {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\n", s.Date, s.Time, s.Duration)
	}
}

// parseSince accepts "", a positive look-back duration or an RFC3339 instant.
func parseSince(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("look-back %q must be positive", raw)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected a duration such as 6h or RFC3339", raw)
	}
	return t, nil
}
