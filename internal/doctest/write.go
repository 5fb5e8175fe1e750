package doctest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"revision-runtime/backend/pkg/models"
)

// ErrNotComponent is returned when code is requested for a revision that
// carries a workflow graph instead of source code.
var ErrNotComponent = errors.New("not a component")

// WriteCode writes the component source of tr verbatim to
// <dir>/<FileName(tr)>.py and returns the path. Workflows are rejected before
// the directory is created.
func WriteCode(tr *models.TransformationRevision, dir string) (string, error) {
	if !tr.IsComponent() {
		return "", fmt.Errorf(
			"transformation revision %s is of type %s, thus code cannot be written to a file: %w",
			tr.ID, tr.Type, ErrNotComponent,
		)
	}
	code, err := tr.Code()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create code directory: %w", err)
	}

	path := filepath.Join(dir, FileName(tr)+".py")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write code file: %w", err)
	}
	return path, nil
}
