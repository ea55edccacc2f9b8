package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDefaultIgnored(t *testing.T) {
	assert.True(t, IsDefaultIgnored(filepath.Join(".git", "objects", "ab")))
	assert.True(t, IsDefaultIgnored(filepath.Join("src", "node_modules", "pkg", "index.js")))
	assert.True(t, IsDefaultIgnored(filepath.Join(".gitgeist", "memory.db")))
	assert.True(t, IsDefaultIgnored("build.log"))

	assert.False(t, IsDefaultIgnored(filepath.Join("src", "main.go")))
	assert.False(t, IsDefaultIgnored("gitgeist.py"))
}

func TestGetIgnorePatterns(t *testing.T) {
	ClearIgnoreCache()
	dir := t.TempDir()

	// No ignore file means no patterns, not an error.
	patterns, err := GetIgnorePatterns(dir)
	require.NoError(t, err)
	assert.Empty(t, patterns)

	content := "# generated files\n*.gen.go\n\nfixtures/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitgeist-ignore"), []byte(content), 0o644))

	patterns, err = GetIgnorePatterns(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.gen.go", "fixtures/"}, patterns)
}

func TestIsIgnored(t *testing.T) {
	patterns := []string{"*.gen.go", "fixtures/"}

	assert.True(t, IsIgnored("types.gen.go", patterns))
	assert.True(t, IsIgnored("fixtures/input.py", patterns))
	assert.False(t, IsIgnored("main.go", patterns))
	assert.False(t, IsIgnored("fixtures.go", patterns))
}
