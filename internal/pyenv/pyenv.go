package pyenv

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Env describes the Python environment whose installed distributions
// answer version lookups.
type Env struct {
	Root         string   // environment root directory
	Python       string   // interpreter path, empty when only metadata dirs were found
	SitePackages []string // directories scanned for *.dist-info and *.egg-info
	Source       string   // "VIRTUAL_ENV", "project" or "path"
}

// Discover locates the environment to resolve versions against: the
// VIRTUAL_ENV variable first, then a virtual environment directory
// inside the project, then the interpreter found on PATH.
func Discover(projectRoot string) (*Env, error) {
	if dir := os.Getenv("VIRTUAL_ENV"); dir != "" {
		if env := venvEnv(dir, "VIRTUAL_ENV"); env != nil {
			return env, nil
		}
		logrus.Warnf("VIRTUAL_ENV=%s does not look like a virtual environment", dir)
	}

	for _, name := range []string{".venv", "venv", "env"} {
		dir := filepath.Join(projectRoot, name)
		if _, err := os.Stat(filepath.Join(dir, "pyvenv.cfg")); err != nil {
			continue
		}
		if env := venvEnv(dir, "project"); env != nil {
			return env, nil
		}
	}

	for _, name := range []string{"python3", "python"} {
		python, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		purelib, err := probePurelib(python)
		if err != nil {
			logrus.Debugf("probing %s: %v", python, err)
			continue
		}
		return &Env{
			Root:         filepath.Dir(filepath.Dir(python)),
			Python:       python,
			SitePackages: []string{purelib},
			Source:       "path",
		}, nil
	}

	return nil, fmt.Errorf("no virtual environment or python interpreter found")
}

// InProject reports whether the environment lives inside the project
// tree. Scanning with an unrelated environment usually yields wrong
// versions, so callers warn when this is false.
func (e *Env) InProject(projectRoot string) bool {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return false
	}
	env, err := filepath.Abs(e.Root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, env)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func venvEnv(dir, source string) *Env {
	site := sitePackagesDirs(dir)
	if len(site) == 0 {
		return nil
	}
	return &Env{
		Root:         dir,
		Python:       interpreterIn(dir),
		SitePackages: site,
		Source:       source,
	}
}

// sitePackagesDirs globs the site-packages layouts of POSIX and Windows
// virtual environments.
func sitePackagesDirs(root string) []string {
	patterns := []string{
		filepath.Join(root, "lib", "python*", "site-packages"),
		filepath.Join(root, "lib64", "python*", "site-packages"),
		filepath.Join(root, "Lib", "site-packages"),
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, dir := range matches {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

func interpreterIn(dir string) string {
	candidates := []string{
		filepath.Join(dir, "bin", "python3"),
		filepath.Join(dir, "bin", "python"),
		filepath.Join(dir, "Scripts", "python.exe"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func probePurelib(python string) (string, error) {
	out, err := exec.Command(python, "-c",
		`import sysconfig; print(sysconfig.get_paths()["purelib"])`).Output()
	if err != nil {
		return "", fmt.Errorf("querying purelib path: %w", err)
	}
	dir := strings.TrimSpace(string(out))
	if dir == "" {
		return "", fmt.Errorf("interpreter reported no purelib path")
	}
	return dir, nil
}
