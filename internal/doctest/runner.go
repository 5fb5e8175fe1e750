// Package doctest writes component source code to disk and runs the
// examples embedded in it with Python's doctest harness.
package doctest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"revision-runtime/backend/pkg/models"
)

// Runner executes the embedded examples of a code file.
type Runner interface {
	Run(ctx context.Context, path string) (*models.DoctestResponse, error)
}

// harness runs doctest.testfile on argv[1] with stdout redirected into a
// buffer and reports the result as a single JSON object on the real stdout.
const harness = `import doctest, io, json, sys
from contextlib import redirect_stdout
with io.StringIO() as buffer, redirect_stdout(buffer):
    result = doctest.testfile(sys.argv[1], module_relative=False)
    output = buffer.getvalue()
json.dump({"attempted": result.attempted, "failed": result.failed, "output": output}, sys.stdout)
`

type harnessResult struct {
	Attempted int    `json:"attempted"`
	Failed    int    `json:"failed"`
	Output    string `json:"output"`
}

// PythonRunner runs the harness in a child interpreter process.
type PythonRunner struct {
	Python  string
	Timeout time.Duration
}

// NewPythonRunner creates a PythonRunner. An empty interpreter defaults to
// python3, a zero timeout to one minute.
func NewPythonRunner(python string, timeout time.Duration) *PythonRunner {
	if python == "" {
		python = "python3"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &PythonRunner{Python: python, Timeout: timeout}
}

// Run executes the examples found in the file at path.
func (r *PythonRunner) Run(ctx context.Context, path string) (*models.DoctestResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Python, "-c", harness, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("doctest of %s aborted: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("doctest of %s failed: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var res harnessResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("failed to decode doctest result: %w", err)
	}

	return &models.DoctestResponse{
		NofAttempted: res.Attempted,
		NofFailed:    res.Failed,
		Output:       res.Output,
	}, nil
}
