// Package command runs external control utilities as structured argument
// vectors. No shell is ever involved: arguments reach the program verbatim.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
)

// DefaultTimeout bounds a single external command.
const DefaultTimeout = 30 * time.Second

// Command is a program name and its arguments.
type Command struct {
	Name string
	Args []string
}

// New builds a command from a program and its arguments.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// With returns a copy of c with extra arguments appended.
func (c Command) With(args ...string) Command {
	out := make([]string, 0, len(c.Args)+len(args))
	out = append(out, c.Args...)
	out = append(out, args...)
	return Command{Name: c.Name, Args: out}
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes a command and returns its standard output.
// A non-zero exit status is returned as *errors.CommandError.
type Runner interface {
	Run(cmd Command) (string, error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner returns a runner bounded by timeout. Zero selects DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(cmd Command) (string, error) {
	log.Debugf("Running: %s", cmd)

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return stdout.String(), nil
	}

	status := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status = exitErr.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = ctx.Err()
	}

	output := stderr.String()
	if strings.TrimSpace(output) == "" {
		output = stdout.String()
	}
	return stdout.String(), &apperrors.CommandError{
		Command:    cmd.String(),
		ExitStatus: status,
		Output:     output,
		Cause:      err,
	}
}
