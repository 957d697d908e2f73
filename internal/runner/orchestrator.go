package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/wifilab/internal/config"
	"github.com/gyaneshwarpardhi/wifilab/internal/metrics"
)

// ErrRunActive is returned by Start while a previous run is still live.
var ErrRunActive = errors.New("run already active")

const (
	eventBuffer  = 256
	defaultGrace = 5 * time.Second
)

// Options configures an Orchestrator. Zero fields get working defaults.
type Options struct {
	Spawner    Spawner
	WorkerBin  string        // interpreter for the worker, default python3
	WorkerArgs []string      // leading args, default ["-m", "pytest"]
	ReportRoot string        // where per-run directories are created
	Grace      time.Duration // interrupt-to-kill escalation window
	Logger     *slog.Logger
}

// Orchestrator owns the single worker slot of a session. It spawns one
// isolated worker per run, relays the worker's output as ordered events,
// and enforces at most one live run at a time.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger

	mu     chan struct{} // 1-token semaphore guarding the active slot
	active *Handle
}

func New(opts Options) *Orchestrator {
	if opts.Spawner == nil {
		opts.Spawner = ExecSpawner{}
	}
	if opts.WorkerBin == "" {
		opts.WorkerBin = "python3"
	}
	if opts.WorkerArgs == nil {
		opts.WorkerArgs = []string{"-m", "pytest"}
	}
	if opts.ReportRoot == "" {
		opts.ReportRoot = "report"
	}
	if opts.Grace <= 0 {
		opts.Grace = defaultGrace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	o := &Orchestrator{
		opts:   opts,
		logger: opts.Logger.With("component", "runner"),
		mu:     make(chan struct{}, 1),
	}
	o.mu <- struct{}{}
	return o
}

// Start spawns a worker for casePath and returns immediately with a handle
// whose event channel the caller drains. The snapshot is written to a
// per-run config file so the worker never shares live state with the
// caller. Start fails with ErrRunActive while a previous handle is in
// StateStarting or StateRunning.
func (o *Orchestrator) Start(ctx context.Context, casePath string, snapshot *config.Snapshot, csvPath string) (*Handle, error) {
	<-o.mu
	defer func() { o.mu <- struct{}{} }()

	if o.active != nil && !o.active.State().Terminal() {
		return nil, ErrRunActive
	}

	id := uuid.NewString()
	reportDir := filepath.Join(o.opts.ReportRoot, time.Now().Format("20060102_150405")+"_"+id[:8])
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	cfgPath := filepath.Join(reportDir, "config.yaml")
	if err := snapshot.Clone().Write(cfgPath); err != nil {
		return nil, fmt.Errorf("write run config: %w", err)
	}

	h := newHandle(id, casePath, reportDir)
	cmd := o.resolveCommand(casePath, cfgPath, csvPath, reportDir)

	proc, err := o.opts.Spawner.Spawn(ctx, cmd)
	if err != nil {
		h.setState(StateFailed)
		close(h.events)
		close(h.done)
		metrics.RunsFinished.WithLabelValues(StateFailed.String()).Inc()
		return nil, fmt.Errorf("spawn worker: %w", err)
	}

	h.proc = proc
	h.setState(StateRunning)
	o.active = h
	metrics.RunsStarted.Inc()
	o.logger.Info("run started", "id", id, "case", casePath, "report_dir", reportDir)

	go o.relay(h, proc, time.Now())
	return h, nil
}

// Cancel requests termination of the run. It is safe to call repeatedly
// and after the run has finished; neither produces an error or a second
// finished event. The worker is interrupted first and killed if it does
// not exit within the grace period.
func (o *Orchestrator) Cancel(h *Handle) {
	if h == nil || h.State().Terminal() {
		return
	}
	h.cancelOnce.Do(func() {
		close(h.cancelReq)
		o.logger.Info("run cancel requested", "id", h.id)
		if err := h.proc.Interrupt(); err != nil {
			o.logger.Warn("interrupt worker", "id", h.id, "error", err)
		}
		go func() {
			select {
			case <-h.done:
			case <-time.After(o.opts.Grace):
				o.logger.Warn("worker did not exit in time, killing", "id", h.id)
				if err := h.proc.Kill(); err != nil {
					o.logger.Warn("kill worker", "id", h.id, "error", err)
				}
			}
		}()
	})
}

// Active returns the most recent handle, which may be terminal, or nil.
func (o *Orchestrator) Active() *Handle {
	<-o.mu
	defer func() { o.mu <- struct{}{} }()
	return o.active
}

func (o *Orchestrator) resolveCommand(casePath, cfgPath, csvPath, reportDir string) Command {
	args := append([]string{}, o.opts.WorkerArgs...)
	args = append(args, casePath,
		"--config="+cfgPath,
		"--scenario="+csvPath,
		"--result="+reportDir,
		"-s",
	)
	return Command{Path: o.opts.WorkerBin, Args: args, Env: os.Environ()}
}

// relay is the single consumer of the worker's output stream. It forwards
// parsed events in emission order and always ends the channel with exactly
// one finished event, whatever the worker did.
func (o *Orchestrator) relay(h *Handle, proc Process, started time.Time) {
	type waitResult struct {
		code int
		err  error
	}
	waitCh := make(chan waitResult, 1)
	go func() {
		code, err := proc.Wait()
		waitCh <- waitResult{code, err}
	}()

	lastPercent := 0
	sc := bufio.NewScanner(proc.Output())
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		ev := parseLine(sc.Text())
		if ev.Kind == KindProgress {
			// Progress never goes backwards within a run.
			if ev.Percent < lastPercent {
				ev.Percent = lastPercent
			}
			lastPercent = ev.Percent
		}
		h.events <- ev
		metrics.RunEventsRelayed.WithLabelValues(string(ev.Kind)).Inc()
	}
	if err := sc.Err(); err != nil {
		h.events <- Event{Kind: KindLog, Line: "worker output error: " + err.Error()}
		metrics.RunEventsRelayed.WithLabelValues(string(KindLog)).Inc()
	}

	res := <-waitCh
	code := res.code
	if res.err != nil {
		h.events <- Event{Kind: KindLog, Line: "worker wait error: " + res.err.Error()}
		metrics.RunEventsRelayed.WithLabelValues(string(KindLog)).Inc()
		if code == 0 {
			code = -1
		}
	}

	final := StateFinished
	switch {
	case h.cancelRequested():
		final = StateCancelled
	case code != 0:
		final = StateFailed
	}
	h.setState(final)

	h.events <- Event{Kind: KindFinished, ExitCode: code}
	metrics.RunEventsRelayed.WithLabelValues(string(KindFinished)).Inc()
	close(h.events)
	close(h.done)

	metrics.RunsFinished.WithLabelValues(final.String()).Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	o.logger.Info("run finished", "id", h.id, "state", final.String(), "exit_code", code)
}
