package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

func TestLoadReturnsEmbeddedDefault(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGroundedAnswer)
	require.NoError(t, err)
	assert.Contains(t, prompt, "uniquement en te basant sur le contexte")

	prompt, err = store.Load(driven.PromptNoInformation)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Aucune information pertinente")
}

func TestLoadCreatesEditableFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptGroundedAnswer)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, driven.PromptGroundedAnswer+".txt"))
	assert.NoError(t, err)
}

func TestLoadPrefersUserFile(t *testing.T) {
	dir := t.TempDir()
	custom := "Réponds à %s avec le contexte: %s"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptGroundedAnswer+".txt"), []byte(custom+"\n"), 0o600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptGroundedAnswer)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestLoadUnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("inconnu")
	assert.Error(t, err)
}
