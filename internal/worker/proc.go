package worker

import (
	"fmt"
	"io"
	"os/exec"
)

// Proc is one running worker process as the supervisor sees it: a stdio
// pair for protocol traffic, a diagnostics stream, and an exit wait.
type Proc interface {
	Stdin() io.WriteCloser
	Stdout() io.ReadCloser
	Stderr() io.ReadCloser
	Wait() error
	Kill() error
}

// Launcher spawns worker processes. The production implementation wraps
// exec.Cmd; tests substitute in-memory pipes.
type Launcher interface {
	Launch() (Proc, error)
	String() string
}

// Command launches the configured executable with stdio pipes wired for
// protocol traffic. Discovery of the executable (interpreter path, module
// arguments) happens outside the bridge; Command only needs something
// ready to exec.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return c.Path
}

func (c Command) Launch() (Proc, error) {
	cmd := exec.Command(c.Path, c.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &cmdProc{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

type cmdProc struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (p *cmdProc) Stdin() io.WriteCloser { return p.stdin }
func (p *cmdProc) Stdout() io.ReadCloser { return p.stdout }
func (p *cmdProc) Stderr() io.ReadCloser { return p.stderr }
func (p *cmdProc) Wait() error           { return p.cmd.Wait() }

func (p *cmdProc) Kill() error {
	p.stdin.Close()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
