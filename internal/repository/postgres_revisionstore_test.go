package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"revision-runtime/backend/pkg/models"
)

func TestPostgresRevisionStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresRevisionStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Ping(ctx))

	name := "data"
	component := &models.TransformationRevision{
		ID:              uuid.New(),
		RevisionGroupID: uuid.New(),
		Name:            "Linear Interpolation",
		Category:        "Time length operations",
		VersionTag:      "1.0.0",
		State:           models.StateReleased,
		Type:            models.TypeComponent,
		IOInterface: models.IOInterface{
			Inputs:  []models.IOConnector{{ID: uuid.New(), Name: &name, DataType: models.DataTypeSeries}},
			Outputs: []models.IOConnector{},
		},
		TestWiring: models.WorkflowWiring{
			InputWirings: []models.InputWiring{{WorkflowInputName: "data", AdapterID: "direct_provisioning", Filters: map[string]string{"value": "[1, 2]"}}},
		},
	}
	require.NoError(t, component.SetCode("def main(*, data):\n    return {}\n"))

	workflow := &models.TransformationRevision{
		ID:              uuid.New(),
		RevisionGroupID: uuid.New(),
		Name:            "Pipeline",
		Category:        "Examples",
		VersionTag:      "0.1.0",
		State:           models.StateDraft,
		Type:            models.TypeWorkflow,
		Content:         json.RawMessage(`{"operators": [], "links": []}`),
	}

	t.Run("Store and Get", func(t *testing.T) {
		require.NoError(t, store.StoreRevision(ctx, component))

		retrieved, err := store.GetRevision(ctx, component.ID)
		require.NoError(t, err)
		assert.Equal(t, component.ID, retrieved.ID)
		assert.Equal(t, component.Name, retrieved.Name)
		assert.Equal(t, component.IOInterface.Inputs, retrieved.IOInterface.Inputs)
		assert.Equal(t, component.TestWiring.InputWirings, retrieved.TestWiring.InputWirings)

		code, err := retrieved.Code()
		require.NoError(t, err)
		assert.Equal(t, "def main(*, data):\n    return {}\n", code)
	})

	t.Run("Store replaces", func(t *testing.T) {
		component.Description = "updated"
		require.NoError(t, store.StoreRevision(ctx, component))

		retrieved, err := store.GetRevision(ctx, component.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", retrieved.Description)
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := store.GetRevision(ctx, uuid.New())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("List with filter", func(t *testing.T) {
		require.NoError(t, store.StoreRevision(ctx, workflow))

		all, err := store.ListRevisions(ctx, RevisionFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		typ := models.TypeWorkflow
		workflows, err := store.ListRevisions(ctx, RevisionFilter{Type: &typ})
		require.NoError(t, err)
		require.Len(t, workflows, 1)
		assert.Equal(t, workflow.ID, workflows[0].ID)
	})
}
