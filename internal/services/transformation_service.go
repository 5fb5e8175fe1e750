package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"revision-runtime/backend/internal/docgen"
	"revision-runtime/backend/internal/doctest"
	"revision-runtime/backend/internal/repository"
	"revision-runtime/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ErrOutsideCodeDir is returned when a requested directory escapes the code directory.
var ErrOutsideCodeDir = errors.New("directory is outside the code directory")

// TransformationService generates documentation and runs doctests for stored revisions.
type TransformationService struct {
	store   repository.RevisionReader
	runner  doctest.Runner
	codeDir string
	logger  Logger
	runs    metric.Int64Counter
}

// NewTransformationService creates a new TransformationService. codeDir is
// used when a call does not name a directory for code files.
func NewTransformationService(store repository.RevisionReader, runner doctest.Runner, codeDir string, logger Logger) *TransformationService {
	runs, err := otel.Meter("revision-runtime/backend/internal/services").Int64Counter(
		"doctest.runs",
		metric.WithDescription("Number of doctest executions"),
	)
	if err != nil && logger != nil {
		logger.Error("failed to create doctest counter", "error", err)
	}
	return &TransformationService{
		store:   store,
		runner:  runner,
		codeDir: codeDir,
		logger:  logger,
		runs:    runs,
	}
}

// Documentation returns the Markdown documentation of a revision.
func (s *TransformationService) Documentation(ctx context.Context, id uuid.UUID) (string, error) {
	tr, err := s.store.GetRevision(ctx, id)
	if err != nil {
		return "", err
	}
	return docgen.Generate(tr), nil
}

// WriteCode writes the source of a component revision into dir and returns
// the file path. An empty dir falls back to the configured code directory;
// any other dir must stay inside it.
func (s *TransformationService) WriteCode(ctx context.Context, id uuid.UUID, dir string) (string, error) {
	dir, err := s.resolveDir(dir)
	if err != nil {
		return "", err
	}
	tr, err := s.store.GetRevision(ctx, id)
	if err != nil {
		return "", err
	}
	return doctest.WriteCode(tr, dir)
}

// resolveDir maps a caller supplied directory into the code directory.
// Relative paths are taken relative to it and absolute paths must lie inside
// it. Without a configured code directory dir is used as given.
func (s *TransformationService) resolveDir(dir string) (string, error) {
	if dir == "" {
		return s.codeDir, nil
	}
	if s.codeDir == "" {
		return dir, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.codeDir, dir)
	}
	base, err := filepath.Abs(s.codeDir)
	if err != nil {
		return "", err
	}
	target, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideCodeDir, dir)
	}
	return target, nil
}

// ExecuteDoctest writes the component's code file and runs its embedded
// examples. The code file stays on disk; removing it is up to the caller.
func (s *TransformationService) ExecuteDoctest(ctx context.Context, id uuid.UUID, dir string) (*models.DoctestResponse, error) {
	path, err := s.WriteCode(ctx, id, dir)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("running doctest", "id", id, "path", path)
	}

	res, err := s.runner.Run(ctx, path)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("doctest failed to run", "id", id, "error", err)
		}
		return nil, err
	}

	if s.runs != nil {
		s.runs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("passed", res.NofFailed == 0)))
	}
	if s.logger != nil {
		s.logger.Info("doctest finished", "id", id, "attempted", res.NofAttempted, "failed", res.NofFailed)
	}
	return res, nil
}
