package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

func writeTemplate(t *testing.T, dir, ref, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ref+".yaml"), []byte(doc), 0o600))
}

func newStore(t *testing.T, dir string) *FilesystemStore {
	t.Helper()
	s, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	return s
}

func Test_FilesystemStore_LoadsDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "edge", `
name: edge
version: 1.2.0
extends: base@^1.0
variables:
  repo_name: logs-fra
  retention_days: 90
spec:
  repos:
    - name: ${repo_name}
      hiddenrepopath:
        - /data/primary
  routing_policies:
    - policy_name: default
      catch_all: ${repo_name}
      routing_criteria: []
`)

	tmpl, err := newStore(t, dir).Get(context.Background(), "edge")
	require.NoError(t, err)

	assert.Equal(t, "edge", tmpl.Name)
	assert.Equal(t, "1.2.0", tmpl.Version)
	assert.Equal(t, "base@^1.0", tmpl.Extends)

	assert.Equal(t, values.KindText, tmpl.Variables["repo_name"].Kind())
	assert.Equal(t, values.KindNumber, tmpl.Variables["retention_days"].Kind())

	repos := tmpl.Spec["repos"]
	require.Len(t, repos, 1)
	assert.Equal(t, "${repo_name}", repos[0]["name"].Text())
	assert.Equal(t, values.KindList, repos[0]["hiddenrepopath"].Kind())
}

func Test_FilesystemStore_MissingFileIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := newStore(t, t.TempDir()).Get(context.Background(), "ghost")
	require.Error(t, err)

	var notFound *entities.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Ref)
}

func Test_FilesystemStore_RejectsMissingName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "anon", `
spec:
  repos:
    - name: a
`)

	_, err := newStore(t, dir).Get(context.Background(), "anon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural validation")
}

func Test_FilesystemStore_RejectsUnknownTopLevelKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "sloppy", `
name: sloppy
sepc:
  repos: []
`)

	_, err := newStore(t, dir).Get(context.Background(), "sloppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural validation")
}

func Test_FilesystemStore_RejectsScalarResourceEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "scalars", `
name: scalars
spec:
  repos:
    - just-a-string
`)

	_, err := newStore(t, dir).Get(context.Background(), "scalars")
	require.Error(t, err)
}

func Test_FilesystemStore_RejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "broken", "name: [unclosed")

	_, err := newStore(t, dir).Get(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template")
}

func Test_FilesystemStore_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newStore(t, t.TempDir()).Get(ctx, "edge")
	require.ErrorIs(t, err, context.Canceled)
}
