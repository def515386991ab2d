package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/riskterm/internal/adapters/report"
)

// NewRootCommand builds the probe command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	cfg := Config{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Smoke-test a running risk terminal",
		Long: `Smoke-test a running risk terminal.

Checks the health proxy, submits a reference applicant and downloads its
report. With --direct the health check goes straight to the scoring service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "url", DefaultBaseURL, "Front-end base URL")
	flags.StringVar(&cfg.APIURL, "api-url", "", "Scoring service base URL for --direct (default: public backend)")
	flags.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Per-request timeout")

	cmd.AddCommand(
		newHealthCommand(&cfg),
		newPredictCommand(&cfg),
		newReportCommand(&cfg),
	)
	return cmd
}

func newHealthCommand(cfg *Config) *cobra.Command {
	var direct bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check backend health through the proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := New(*cfg).Health(cmd.Context(), direct)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Target: %s\n", rep.Target)
			if err != nil {
				if rep.Status != 0 {
					fmt.Fprintf(w, "Health check failed! Status: %d\n", rep.Status)
					fmt.Fprintf(w, "Response: %v\n", rep.Payload)
				}
				return err
			}
			fmt.Fprintf(w, "Health check passed! Status: %d\n", rep.Status)
			fmt.Fprintf(w, "Latency: %s\n", formatLatency(rep.Latency))
			fmt.Fprintf(w, "Response: %v\n", rep.Payload)
			return nil
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Query the scoring service instead of the front-end proxy")
	return cmd
}

func newPredictCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Assess the reference applicant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := New(*cfg).Predict(cmd.Context())
			if err != nil {
				return err
			}
			printVerdict(cmd.OutOrStdout(), rep)
			return nil
		},
	}
}

func newReportCommand(cfg *Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Assess the reference applicant and save its PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			rep, err := New(*cfg).Report(cmd.Context(), f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			printVerdict(cmd.OutOrStdout(), rep)
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", report.Filename, "Output file for the PDF")
	return cmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCommand(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func printVerdict(w io.Writer, rep PredictReport) {
	verdict := report.VerdictLowRisk
	if rep.Result.HighRisk() {
		verdict = report.VerdictHighRisk
	}
	fmt.Fprintf(w, "Verdict: %s\n", verdict)
	fmt.Fprintf(w, "Default probability: %s\n", report.FormatProbability(rep.Result.DefaultProbability))
	fmt.Fprintf(w, "Latency: %s\n", formatLatency(rep.Latency))
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}
