package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Command is a fully resolved worker invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Process is a running worker. Output is the worker's combined
// stdout/stderr stream; Wait returns the exit code once the worker exits.
type Process interface {
	Output() io.Reader
	Wait() (int, error)
	Interrupt() error
	Kill() error
}

// Spawner creates worker processes. The exec-backed implementation is used
// in production; tests substitute a scripted one.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) (Process, error)
}

// ExecSpawner runs workers as real OS processes.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(ctx context.Context, cmd Command) (Process, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	if c.Env == nil {
		c.Env = os.Environ()
	}

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	if err := c.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("start worker: %w", err)
	}
	return &execProcess{cmd: c, out: pr, pw: pw}, nil
}

type execProcess struct {
	cmd *exec.Cmd
	out *io.PipeReader
	pw  *io.PipeWriter
}

func (p *execProcess) Output() io.Reader { return p.out }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	p.pw.Close()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return p.cmd.ProcessState.ExitCode(), nil
}

func (p *execProcess) Interrupt() error {
	return p.cmd.Process.Signal(os.Interrupt)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
