package deploy

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

const (
	msgToolNotFound   = "required executable not found"
	msgTransferFailed = "transfer command failed"
)

// Sentinel errors matched with errors.Is. Returned errors carry the tool name,
// exit code and captured output as context.
var (
	ErrToolNotFound   = errors.RuntimeError(msgToolNotFound).Build()
	ErrTransferFailed = errors.TransferError(msgTransferFailed).Build()
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands found on PATH.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, msgToolNotFound).
			Fatal().
			WithContext("tool", name).
			Build()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err = cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.Bytes(), errors.WrapError(ctxErr, errors.CategoryRuntime, "command cancelled").
			WithContext("tool", name).
			Build()
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return out.Bytes(), transferFailed(name, exitErr.ExitCode(), out.String(), err)
	}
	return out.Bytes(), errors.WrapError(err, errors.CategoryRuntime, "failed to start command").
		WithContext("tool", name).
		Build()
}

func transferFailed(tool string, code int, output string, cause error) error {
	return errors.WrapError(cause, errors.CategoryTransfer, msgTransferFailed).
		WithContext("tool", tool).
		WithContext("exit_code", code).
		WithContext("output", output).
		Build()
}

// ExitCode returns the exit code recorded on a transfer failure, or -1.
func ExitCode(err error) int {
	for err != nil {
		classified, ok := errors.AsClassified(err)
		if !ok {
			return -1
		}
		if code, ok := classified.Context().Get("exit_code"); ok {
			if n, ok := code.(int); ok {
				return n
			}
		}
		err = classified.Unwrap()
	}
	return -1
}

// transientExitCodes are rsync statuses caused by the connection rather than the data:
// socket I/O (10), protocol stream (12), timeouts (30, 35) and ssh failures (255).
var transientExitCodes = map[int]bool{10: true, 12: true, 30: true, 35: true, 255: true}

// IsTransient reports whether err is a transfer failure worth retrying.
func IsTransient(err error) bool {
	return transientExitCodes[ExitCode(err)]
}
