package codefiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revision-runtime/backend/pkg/models"
)

func writeRevision(t *testing.T, path string, typ models.Type, content string) {
	t.Helper()
	tr := models.TransformationRevision{
		ID:      uuid.New(),
		Name:    filepath.Base(path),
		State:   models.StateReleased,
		Type:    typ,
		Content: json.RawMessage(content),
	}
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeRevision(t, filepath.Join(root, "components", "arithmetic", "add_100_a.json"), models.TypeComponent, `"def main(*, a, b):\n    return {\"sum\": a + b}\n"`)
	writeRevision(t, filepath.Join(root, "components", "basic", "const_100_b.json"), models.TypeComponent, `"VALUE = 1\n"`)
	writeRevision(t, filepath.Join(root, "workflows", "flow_100_c.json"), models.TypeWorkflow, `{"operators": []}`)
	return root
}

func TestWriteCodeFiles(t *testing.T) {
	root := setupTree(t)

	written, err := WriteCodeFiles(root)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	code, err := os.ReadFile(filepath.Join(root, "components", "arithmetic", "add_100_a.py"))
	require.NoError(t, err)
	assert.Equal(t, "def main(*, a, b):\n    return {\"sum\": a + b}\n", string(code))

	_, err = os.Stat(filepath.Join(root, "workflows", "flow_100_c.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveCodeFiles_KeepsUnpairedFiles(t *testing.T) {
	root := setupTree(t)
	_, err := WriteCodeFiles(root)
	require.NoError(t, err)

	stray := filepath.Join(root, "components", "helper.py")
	require.NoError(t, os.WriteFile(stray, []byte("x = 1\n"), 0o644))

	removed, err := RemoveCodeFiles(root)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	_, err = os.Stat(filepath.Join(root, "components", "arithmetic", "add_100_a.py"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(stray)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "components", "arithmetic", "add_100_a.json"))
	assert.NoError(t, err)
}

func TestWriteAllCodeFiles(t *testing.T) {
	root := setupTree(t)
	target := filepath.Join(t.TempDir(), "flat")

	written, err := WriteAllCodeFiles(root, target)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(target, "add_100_a.py"),
		filepath.Join(target, "const_100_b.py"),
	}, written)
}

func TestLoadRevisions(t *testing.T) {
	root := setupTree(t)

	revisions, err := LoadRevisions(root)
	require.NoError(t, err)
	assert.Len(t, revisions, 3)
}

func TestWriteCodeFiles_MissingRoot(t *testing.T) {
	_, err := WriteCodeFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReadRevision_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := ReadRevision(path)
	assert.Error(t, err)
}
