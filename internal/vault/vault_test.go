package vault_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notecourier/notecourier/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setUpVault populates a temp directory with the given files.
func setUpVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		abspath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(abspath), 0755))
		require.NoError(t, os.WriteFile(abspath, []byte(content), 0644))
	}
	v, err := vault.Open(root)
	require.NoError(t, err)
	return v
}

func TestResolve(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"Inbox/Idea.md":      "# Idea\n",
		"Projects/Idea.md":   "# Other Idea\n",
		"Projects/Plan.md":   "# Plan\n",
		"assets/diagram.png": "png-bytes",
	})

	t.Run("Exact vault-relative path", func(t *testing.T) {
		file := v.Resolve("Projects/Plan.md", "Inbox/Idea.md")
		require.NotNil(t, file)
		assert.Equal(t, "Projects/Plan.md", file.RelativePath)
	})

	t.Run("Path without extension", func(t *testing.T) {
		file := v.Resolve("Projects/Plan", "Inbox/Idea.md")
		require.NotNil(t, file)
		assert.Equal(t, "Projects/Plan.md", file.RelativePath)
	})

	t.Run("Base name match", func(t *testing.T) {
		file := v.Resolve("Plan", "Inbox/Idea.md")
		require.NotNil(t, file)
		assert.Equal(t, "Projects/Plan.md", file.RelativePath)
	})

	t.Run("Ambiguity broken by proximity", func(t *testing.T) {
		file := v.Resolve("Idea", "Projects/Plan.md")
		require.NotNil(t, file)
		assert.Equal(t, "Projects/Idea.md", file.RelativePath)
	})

	t.Run("Binary asset", func(t *testing.T) {
		file := v.Resolve("diagram.png", "Inbox/Idea.md")
		require.NotNil(t, file)
		assert.Equal(t, "assets/diagram.png", file.RelativePath)
		assert.Equal(t, "png", file.Extension())
	})

	t.Run("Unresolved", func(t *testing.T) {
		assert.Nil(t, v.Resolve("Missing Note", "Inbox/Idea.md"))
	})
}

func TestReadWrite(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"Note.md": "# Note\n",
	})
	file := v.Get("Note.md")
	require.NotNil(t, file)

	content, err := v.ReadText(file)
	require.NoError(t, err)
	assert.Equal(t, "# Note\n", content)

	require.NoError(t, v.WriteText(file, "# Changed\n"))
	content, err = v.ReadText(file)
	require.NoError(t, err)
	assert.Equal(t, "# Changed\n", content)
}

func TestFileNaming(t *testing.T) {
	file := &vault.File{RelativePath: "Projects/My Plan.md"}
	assert.Equal(t, "My Plan.md", file.Name())
	assert.Equal(t, "My Plan", file.Title())
	assert.Equal(t, "md", file.Extension())
}
