package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/ed-orders/internal/config"
	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/internal/seed"
	"github.com/jwalitptl/ed-orders/internal/service/abnormal"
	"github.com/jwalitptl/ed-orders/internal/service/duplicate"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "ed-orders",
		Short:        "ED order entry with duplicate-test checks",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default: search ./, ./config, /app/config)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(checkCmd(&configPath))
	rootCmd.AddCommand(classifyCmd())
	return rootCmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the outbox publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// checkCmd runs the duplicate check against the built-in mock tables, using
// the configured policy.
func checkCmd(configPath *string) *cobra.Command {
	var (
		mrn   string
		tests []string
		at    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a duplicate-test check against the seeded history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			// Seed relative to the real clock so --at can look back at it.
			data := seed.Load(time.Now())
			svc := duplicate.NewService(policyFrom(cfg.Duplicate), memory.NewHistoryFromResults(data.Results), nil, metrics.NewNop()).
				WithClock(func() time.Time { return now })

			finding := svc.Check(cmd.Context(), mrn, tests)
			return writeJSON(cmd.OutOrStdout(), finding)
		},
	}
	cmd.Flags().StringVarP(&mrn, "patient", "p", "", "patient MRN")
	cmd.Flags().StringArrayVarP(&tests, "test", "t", nil, "candidate test name (repeatable)")
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC3339 time instead of now")
	_ = cmd.MarkFlagRequired("patient")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func classifyCmd() *cobra.Command {
	var refRange string

	cmd := &cobra.Command{
		Use:   "classify <value>",
		Short: "Classify a result value against a reference range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag := abnormal.Classify(args[0], refRange)
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"value":           args[0],
				"reference_range": refRange,
				"flag":            flag,
				"abnormal":        flag.Abnormal(),
			})
		},
	}
	cmd.Flags().StringVarP(&refRange, "range", "r", "", `reference range, e.g. "4.5-11.0", "<0.04" or ">3.5"`)
	return cmd
}

func policyFrom(cfg config.DuplicateConfig) duplicate.Policy {
	policy := duplicate.DefaultPolicy()
	if cfg.DefaultWindow > 0 {
		policy.DefaultWindow = cfg.DefaultWindow
	}
	if cfg.ExtendedWindow > 0 {
		policy.ExtendedWindow = cfg.ExtendedWindow
	}
	if len(cfg.SpecialTests) > 0 {
		policy.SpecialTests = cfg.SpecialTests
	}
	policy.ExactSpecialMatch = cfg.ExactSpecialMatch
	return policy
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
