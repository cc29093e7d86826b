package index

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// Installed provides version lookup for the distributions installed in
// a Python environment, read from site-packages metadata directories.
type Installed struct {
	dirs  []string
	dists map[string]pypi.Distribution
}

// NewInstalled creates an index over the given site-packages directories.
func NewInstalled(dirs ...string) *Installed {
	return &Installed{
		dirs:  dirs,
		dists: make(map[string]pypi.Distribution),
	}
}

// Load scans the directories for *.dist-info and *.egg-info metadata.
// Entries that cannot be read are skipped; the first distribution seen
// for a normalized name wins.
func (idx *Installed) Load() {
	for _, dir := range idx.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logrus.Debugf("skipping %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			dist, ok := readDistribution(path, entry.Name())
			if !ok {
				continue
			}
			key := pypi.NormalizeName(dist.Name)
			if prev, dup := idx.dists[key]; dup {
				logrus.Debugf("ignoring %s at %s, already indexed at %s",
					dist.Name, dist.Location, prev.Location)
				continue
			}
			idx.dists[key] = dist
		}
	}
}

// Lookup finds the installed distribution for an import or
// distribution name.
func (idx *Installed) Lookup(name string) (pypi.Distribution, bool) {
	dist, ok := idx.dists[pypi.NormalizeName(name)]
	return dist, ok
}

// Len reports how many distributions were indexed.
func (idx *Installed) Len() int {
	return len(idx.dists)
}

func readDistribution(path, base string) (pypi.Distribution, bool) {
	var metaFile string
	switch {
	case strings.HasSuffix(base, ".dist-info"):
		metaFile = filepath.Join(path, "METADATA")
	case strings.HasSuffix(base, ".egg-info"):
		// Older installs write the PKG-INFO contents as the entry itself.
		metaFile = filepath.Join(path, "PKG-INFO")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			metaFile = path
		}
	default:
		return pypi.Distribution{}, false
	}

	name, version, err := readMetadata(metaFile)
	if err != nil {
		logrus.Debugf("reading %s: %v", metaFile, err)
	}
	if name == "" || version == "" {
		dirName, dirVersion := splitDirName(base)
		if name == "" {
			name = dirName
		}
		if version == "" {
			version = dirVersion
		}
	}
	if name == "" || version == "" {
		logrus.Debugf("skipping %s: no usable metadata", path)
		return pypi.Distribution{}, false
	}

	return pypi.Distribution{Name: name, Version: version, Location: path}, true
}

// readMetadata pulls Name and Version out of an RFC 822 style metadata
// header block. The header ends at the first blank line.
func readMetadata(path string) (name, version string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if value, ok := strings.CutPrefix(line, "Name:"); ok {
			name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Version:"); ok {
			version = strings.TrimSpace(value)
		}
		if name != "" && version != "" {
			break
		}
	}
	return name, version, scanner.Err()
}

// splitDirName recovers name and version from a metadata directory
// name such as requests-2.31.0.dist-info. Wheel metadata escapes
// hyphens in the distribution name, so the first hyphen separates
// name from version.
func splitDirName(base string) (string, string) {
	stem := strings.TrimSuffix(base, ".dist-info")
	stem = strings.TrimSuffix(stem, ".egg-info")
	name, version, found := strings.Cut(stem, "-")
	if !found {
		return stem, ""
	}
	return name, version
}
