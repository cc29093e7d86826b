package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// DefaultExcludes are directory names the walker never descends into.
var DefaultExcludes = []string{
	".venv", "venv", "env", "build", "dist", ".git", "__pycache__", "node_modules",
}

// Walker enumerates Python source files under a project root.
type Walker struct {
	root     string
	excludes map[string]bool
}

// NewWalker creates a walker rooted at root. Extra names extend the
// default exclusion set.
func NewWalker(root string, extra ...string) *Walker {
	excludes := make(map[string]bool, len(DefaultExcludes)+len(extra))
	for _, name := range DefaultExcludes {
		excludes[name] = true
	}
	for _, name := range extra {
		excludes[name] = true
	}
	return &Walker{root: root, excludes: excludes}
}

// Root returns the project root the walker was created for.
func (w *Walker) Root() string {
	return w.root
}

// Excluded reports whether a directory name is pruned from traversal.
func (w *Walker) Excluded(name string) bool {
	return w.excludes[name]
}

// Files returns every .py file under the root in lexical order, with
// excluded directories pruned. Unreadable paths are skipped silently.
func (w *Walker) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Debugf("skipping unreadable path %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.excludes[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Dirs returns every directory the walker descends into, in lexical
// order, starting with the root itself.
func (w *Walker) Dirs() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excludes[d.Name()] {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// LocalModules returns the names that identify the project's own
// packages: every directory carrying an __init__.py marker, the root
// directory's basename, and any distribution name declared in
// pyproject.toml. The set is computed once per call and uses the same
// exclusions as Files, so an environment living inside the project does
// not leak its installed packages into the local set.
func (w *Walker) LocalModules() (map[string]bool, error) {
	locals := make(map[string]bool)
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.excludes[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == "__init__.py" {
			locals[filepath.Base(filepath.Dir(path))] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(w.root)
	if err != nil {
		return nil, err
	}
	locals[filepath.Base(abs)] = true

	for _, name := range w.pyprojectNames() {
		locals[name] = true
		// a distribution named my-pkg is imported as my_pkg
		locals[strings.ReplaceAll(name, "-", "_")] = true
	}
	return locals, nil
}

type pyproject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// pyprojectNames reads the project's own distribution name(s) from
// pyproject.toml, covering both PEP 621 and poetry metadata.
func (w *Walker) pyprojectNames() []string {
	data, err := os.ReadFile(filepath.Join(w.root, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pp pyproject
	if err := toml.Unmarshal(data, &pp); err != nil {
		logrus.Debugf("unparseable pyproject.toml: %v", err)
		return nil
	}
	var names []string
	if pp.Project.Name != "" {
		names = append(names, pp.Project.Name)
	}
	if pp.Tool.Poetry.Name != "" {
		names = append(names, pp.Tool.Poetry.Name)
	}
	return names
}
