package deck

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/sjoeboo/conductor-bridge/internal/logging"
)

// Result holds the outcome of one CLI invocation. Invocation failures
// (binary missing, timeout) are folded into a non-zero ExitCode with a
// synthetic Stderr so every caller has a single failure path.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the invocation exited zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes the agent-deck binary. Implemented by execRunner in
// production and by fakes in tests.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) Result
}

// execRunner runs agent-deck as a subprocess via os/exec.
type execRunner struct {
	bin string
	log *slog.Logger
}

// NewRunner returns a Runner that invokes the given binary.
func NewRunner(bin string) Runner {
	return &execRunner{
		bin: bin,
		log: logging.ForComponent(logging.CompDeck),
	}
}

func (r *execRunner) Run(ctx context.Context, timeout time.Duration, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("cli_invoke", slog.String("args", strings.Join(args, " ")))

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.log.Warn("cli_timeout",
				slog.String("args", strings.Join(args, " ")),
				slog.Duration("timeout", timeout))
			return Result{ExitCode: 1, Stderr: "timeout"}
		}
		if errors.Is(err, exec.ErrNotFound) {
			r.log.Error("cli_not_found", slog.String("bin", r.bin))
			return Result{ExitCode: 1, Stderr: "not found"}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}

		// Anything else (permission denied, fork failure) collapses to the
		// same uniform failure signal.
		r.log.Error("cli_invoke_failed",
			slog.String("args", strings.Join(args, " ")),
			slog.String("error", err.Error()))
		return Result{ExitCode: 1, Stderr: err.Error()}
	}

	return Result{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}
}
