package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func projectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "import requests\n")
	writeFile(t, filepath.Join(root, "myapp", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "myapp", "utils.py"), "import os\n")
	writeFile(t, filepath.Join(root, "docs", "conf.py"), "import sphinx\n")
	writeFile(t, filepath.Join(root, "README.md"), "hello\n")
	// directories that must never be scanned
	writeFile(t, filepath.Join(root, ".venv", "lib", "python3.11", "site-packages", "requests", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "index.py"), "")
	writeFile(t, filepath.Join(root, "build", "gen.py"), "")
	return root
}

func TestWalker_Files(t *testing.T) {
	root := projectTree(t)

	files, err := NewWalker(root).Files()
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "app.py"),
		filepath.Join(root, "docs", "conf.py"),
		filepath.Join(root, "myapp", "__init__.py"),
		filepath.Join(root, "myapp", "utils.py"),
	}
	assert.Equal(t, want, files)
}

func TestWalker_Files_ExtraExcludes(t *testing.T) {
	root := projectTree(t)

	files, err := NewWalker(root, "docs").Files()
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f, "docs")
	}
	assert.Len(t, files, 3)
}

func TestWalker_Files_Deterministic(t *testing.T) {
	root := projectTree(t)
	w := NewWalker(root)

	first, err := w.Files()
	require.NoError(t, err)
	second, err := w.Files()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWalker_Dirs(t *testing.T) {
	root := projectTree(t)

	dirs, err := NewWalker(root).Dirs()
	require.NoError(t, err)

	assert.Contains(t, dirs, root)
	assert.Contains(t, dirs, filepath.Join(root, "myapp"))
	assert.NotContains(t, dirs, filepath.Join(root, ".venv"))
	assert.NotContains(t, dirs, filepath.Join(root, "node_modules"))
}

func TestWalker_LocalModules(t *testing.T) {
	root := projectTree(t)

	locals, err := NewWalker(root).LocalModules()
	require.NoError(t, err)

	assert.True(t, locals["myapp"], "package dir with __init__.py is local")
	assert.True(t, locals[filepath.Base(root)], "root basename is local")
	assert.False(t, locals["requests"], "packages inside the venv are not local")
	assert.False(t, locals["docs"], "dirs without __init__.py are not local")
}

func TestWalker_LocalModules_Pyproject(t *testing.T) {
	root := projectTree(t)
	writeFile(t, filepath.Join(root, "pyproject.toml"), `
[project]
name = "my-dist"

[tool.poetry]
name = "poetry-name"
`)

	locals, err := NewWalker(root).LocalModules()
	require.NoError(t, err)

	assert.True(t, locals["my-dist"])
	assert.True(t, locals["my_dist"], "import form of the declared name is local")
	assert.True(t, locals["poetry-name"])
	assert.True(t, locals["poetry_name"])
}

func TestWalker_LocalModules_BadPyproject(t *testing.T) {
	root := projectTree(t)
	writeFile(t, filepath.Join(root, "pyproject.toml"), "not [valid toml")

	locals, err := NewWalker(root).LocalModules()
	require.NoError(t, err)
	assert.True(t, locals["myapp"], "broken pyproject must not break discovery")
}

func TestWalker_Excluded(t *testing.T) {
	w := NewWalker(t.TempDir(), "extra")
	assert.True(t, w.Excluded(".git"))
	assert.True(t, w.Excluded("extra"))
	assert.False(t, w.Excluded("src"))
}

func TestWalker_Root(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, root, NewWalker(root).Root())
}
