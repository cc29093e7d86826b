package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// Change kinds reported by Diff.
const (
	Added   = "added"
	Removed = "removed"
	Changed = "changed"
)

// Change describes one drift between the manifest on disk and a fresh
// resolution.
type Change struct {
	Kind string
	Name string
	Have string // version on disk, empty for added entries
	Want string // freshly resolved version, empty for removed entries
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return "+ " + formatLine(pypi.Requirement{Name: c.Name, Version: c.Want})
	case Removed:
		return "- " + formatLine(pypi.Requirement{Name: c.Name, Version: c.Have})
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Name, orUnpinned(c.Have), orUnpinned(c.Want))
	}
}

func orUnpinned(version string) string {
	if version == "" {
		return "unpinned"
	}
	return version
}

// Diff compares the manifest on disk against a fresh resolution, keyed
// by normalized distribution name, and reports the entries that were
// added, removed or repinned, sorted case-insensitively by name.
func Diff(existing, fresh []pypi.Requirement) []Change {
	have := make(map[string]pypi.Requirement, len(existing))
	for _, req := range existing {
		have[pypi.NormalizeName(req.Name)] = req
	}
	want := make(map[string]pypi.Requirement, len(fresh))
	for _, req := range fresh {
		want[pypi.NormalizeName(req.Name)] = req
	}

	keys := make(map[string]bool, len(have)+len(want))
	for key := range have {
		keys[key] = true
	}
	for key := range want {
		keys[key] = true
	}

	var changes []Change
	for key := range keys {
		h, inHave := have[key]
		w, inWant := want[key]
		switch {
		case !inHave:
			changes = append(changes, Change{Kind: Added, Name: w.Name, Want: w.Version})
		case !inWant:
			changes = append(changes, Change{Kind: Removed, Name: h.Name, Have: h.Version})
		case h.Version != w.Version:
			changes = append(changes, Change{Kind: Changed, Name: w.Name, Have: h.Version, Want: w.Version})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return strings.ToLower(changes[i].Name) < strings.ToLower(changes[j].Name)
	})
	return changes
}
