package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revision-runtime/backend/pkg/models"
)

// Schema creates the transformation_revisions table.
const Schema = `CREATE TABLE IF NOT EXISTS transformation_revisions (
	id UUID PRIMARY KEY,
	revision_group_id UUID NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	version_tag TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	type TEXT NOT NULL,
	documentation TEXT NOT NULL DEFAULT '',
	released_timestamp TIMESTAMPTZ,
	disabled_timestamp TIMESTAMPTZ,
	io_interface JSONB NOT NULL,
	content JSONB NOT NULL,
	test_wiring JSONB NOT NULL
)`

const selectColumns = `SELECT id, revision_group_id, name, description, category, version_tag,
	state, type, documentation, released_timestamp, disabled_timestamp,
	io_interface, content, test_wiring
	FROM transformation_revisions`

// PostgresRevisionStore is a PostgreSQL implementation of the RevisionStore interface.
type PostgresRevisionStore struct {
	db *pgxpool.Pool
}

// NewPostgresRevisionStore creates a new PostgresRevisionStore.
func NewPostgresRevisionStore(db *pgxpool.Pool) *PostgresRevisionStore {
	return &PostgresRevisionStore{db: db}
}

// EnsureSchema creates the table if it does not exist yet.
func (s *PostgresRevisionStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// Ping checks the database connection.
func (s *PostgresRevisionStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// StoreRevision inserts a revision or replaces the row with the same id.
func (s *PostgresRevisionStore) StoreRevision(ctx context.Context, tr *models.TransformationRevision) error {
	if err := tr.Validate(); err != nil {
		return fmt.Errorf("invalid transformation revision %s: %w", tr.ID, err)
	}
	content := tr.Content
	if len(content) == 0 {
		content = []byte("null")
	}
	_, err := s.db.Exec(ctx, `INSERT INTO transformation_revisions (
			id, revision_group_id, name, description, category, version_tag,
			state, type, documentation, released_timestamp, disabled_timestamp,
			io_interface, content, test_wiring
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			revision_group_id = EXCLUDED.revision_group_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			version_tag = EXCLUDED.version_tag,
			state = EXCLUDED.state,
			type = EXCLUDED.type,
			documentation = EXCLUDED.documentation,
			released_timestamp = EXCLUDED.released_timestamp,
			disabled_timestamp = EXCLUDED.disabled_timestamp,
			io_interface = EXCLUDED.io_interface,
			content = EXCLUDED.content,
			test_wiring = EXCLUDED.test_wiring`,
		tr.ID, tr.RevisionGroupID, tr.Name, tr.Description, tr.Category, tr.VersionTag,
		string(tr.State), string(tr.Type), tr.Documentation, tr.ReleasedTimestamp, tr.DisabledTimestamp,
		tr.IOInterface, string(content), tr.TestWiring,
	)
	return err
}

// GetRevision retrieves a revision by its id.
func (s *PostgresRevisionStore) GetRevision(ctx context.Context, id uuid.UUID) (*models.TransformationRevision, error) {
	tr, err := scanRevision(s.db.QueryRow(ctx, selectColumns+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// ListRevisions returns the revisions matching filter ordered by category and name.
func (s *PostgresRevisionStore) ListRevisions(ctx context.Context, filter RevisionFilter) ([]*models.TransformationRevision, error) {
	rows, err := s.db.Query(ctx, selectColumns+" ORDER BY category, name, version_tag")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []*models.TransformationRevision
	for rows.Next() {
		tr, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		if filter.Matches(tr) {
			revisions = append(revisions, tr)
		}
	}

	return revisions, rows.Err()
}

func scanRevision(row pgx.Row) (*models.TransformationRevision, error) {
	var (
		tr         models.TransformationRevision
		state, typ string
		content    []byte
	)
	err := row.Scan(
		&tr.ID, &tr.RevisionGroupID, &tr.Name, &tr.Description, &tr.Category, &tr.VersionTag,
		&state, &typ, &tr.Documentation, &tr.ReleasedTimestamp, &tr.DisabledTimestamp,
		&tr.IOInterface, &content, &tr.TestWiring,
	)
	if err != nil {
		return nil, err
	}
	tr.State = models.State(state)
	tr.Type = models.Type(typ)
	tr.Content = content
	return &tr, nil
}
