package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"
)

// Mode selects how a script's stdout is framed.
type Mode string

const (
	// ModeText treats the entire stdout as the answer.
	ModeText Mode = "text"
	// ModeJSON requires stdout to be a single JSON document.
	ModeJSON Mode = "json"
)

// Runner invokes an external response-generation script and returns its
// framed output.
type Runner interface {
	Invoke(ctx context.Context, mode Mode, script string, args []string, timeout time.Duration) ([]byte, error)
}

// ProcessRunner starts one python process per call. Processes are never
// pooled or reused; a hung call cannot corrupt a later one.
type ProcessRunner struct {
	pythonBin string
	scriptDir string
	log       *logger.Logger
}

func NewProcessRunner(pythonBin, scriptDir string, log *logger.Logger) *ProcessRunner {
	return &ProcessRunner{pythonBin: pythonBin, scriptDir: scriptDir, log: log}
}

// Invoke races process completion against the timeout. When the timer wins
// the process is abandoned, not killed: its eventual output is discarded.
func (r *ProcessRunner) Invoke(ctx context.Context, mode Mode, script string, args []string, timeout time.Duration) ([]byte, error) {
	cmdArgs := append([]string{"-u", filepath.Join(r.scriptDir, script)}, args...)
	cmd := exec.Command(r.pythonBin, cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", nebula_errors.ErrProcessFailure, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, nebula_errors.ErrTimeout
	case <-timer.C:
		return nil, nebula_errors.ErrTimeout
	case err := <-done:
		if err != nil {
			if r.log != nil {
				r.log.Errorf("%s exited with error: %v, stderr: %s", script, err, stderr.String())
			}
			return nil, fmt.Errorf("%w: %v", nebula_errors.ErrProcessFailure, err)
		}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if mode == ModeJSON && !json.Valid(out) {
		return nil, nebula_errors.ErrMalformedResponse
	}
	return out, nil
}
