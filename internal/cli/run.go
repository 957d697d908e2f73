package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wifilab/internal/config"
	"github.com/gyaneshwarpardhi/wifilab/internal/report"
	"github.com/gyaneshwarpardhi/wifilab/internal/runner"
	"github.com/gyaneshwarpardhi/wifilab/internal/scenario"
	"github.com/gyaneshwarpardhi/wifilab/internal/session"
)

type runCmdOptions struct {
	ScenarioPath string
	ReportRoot   string
	WorkerBin    string
	Grace        time.Duration
}

func newRunCmd() *cobra.Command {
	opts := &runCmdOptions{}

	cmd := &cobra.Command{
		Use:   "run CASE_PATH",
		Short: "Execute a test case in an isolated worker",
		Long: `Execute a test case with the current lab config and scenario file.

Worker output is streamed to stdout; progress and the report directory are
reported as they arrive. The command's exit code mirrors the worker's.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCase(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.ScenarioPath, "scenario", "", "Scenario CSV path (default: csv_path from config, else scenario.csv)")
	cmd.Flags().StringVar(&opts.ReportRoot, "report-root", "report", "Directory run reports are created under")
	cmd.Flags().StringVar(&opts.WorkerBin, "worker", "python3", "Worker interpreter")
	cmd.Flags().DurationVar(&opts.Grace, "cancel-grace", 5*time.Second, "Interrupt-to-kill window on cancellation")

	return cmd
}

// silentForm satisfies the synchronizer's form contract for headless use.
type silentForm struct{}

func (silentForm) Display(scenario.Row) {}
func (silentForm) Clear()               {}

func runCase(casePath string, opts *runCmdOptions) error {
	loader, err := config.NewLoader(globalOpts.ConfigPath)
	if err != nil {
		return exitWithCode(err, ExitInternalError)
	}
	snap := loader.Snapshot()
	if err := config.Validate(snap); err != nil {
		return exitWithCode(fmt.Errorf("config invalid: %w", err), ExitValidation)
	}

	sess, err := session.New(session.Options{
		Orchestrator: runner.New(runner.Options{
			WorkerBin:  opts.WorkerBin,
			ReportRoot: opts.ReportRoot,
			Grace:      opts.Grace,
		}),
	})
	if err != nil {
		return exitWithCode(err, ExitInternalError)
	}
	sess.LoadConfig(snap)
	sess.SelectCase(casePath)

	csvPath := opts.ScenarioPath
	if csvPath == "" {
		csvPath = snap.GetString("csv_path")
	}
	if csvPath == "" {
		csvPath = "scenario.csv"
	}
	if err := sess.AttachScenario(csvPath, silentForm{}); err != nil {
		return exitWithCode(err, ExitInternalError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h, err := sess.StartRun(ctx)
	if err != nil {
		return exitWithCode(err, ExitInternalError)
	}
	fmt.Printf("run %s started, report dir %s\n", h.ID()[:8], h.ReportDir())

	// Cancel the worker when the operator interrupts us.
	go func() {
		<-ctx.Done()
		sess.CancelRun(h)
	}()

	exitCode := 0
	reportDir := ""
	for ev := range h.Events() {
		switch ev.Kind {
		case runner.KindLog:
			fmt.Println(ev.Line)
		case runner.KindProgress:
			fmt.Printf("progress: %d%%\n", ev.Percent)
		case runner.KindReportDir:
			reportDir = ev.Path
			fmt.Printf("report directory ready: %s\n", ev.Path)
		case runner.KindFinished:
			exitCode = ev.ExitCode
		}
	}
	fmt.Printf("run %s %s (exit code %d)\n", h.ID()[:8], h.State(), exitCode)

	if reportDir == "" {
		reportDir = h.ReportDir()
	}
	if r, err := report.Scan(reportDir); err == nil {
		for _, a := range r.Results {
			fmt.Printf("result: %s\n", a.Path)
		}
	}

	if exitCode != 0 {
		return exitWithCode(fmt.Errorf("worker exited with code %d", exitCode), exitCode)
	}
	return nil
}
