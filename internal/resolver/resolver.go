package resolver

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inevitablegs/ReqTxtGenerator/internal/index"
	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// Resolver turns module names into pinned requirements using the
// installed-distribution index.
type Resolver struct {
	index   *index.Installed
	stdlib  map[string]bool
	local   map[string]bool
	nameMap map[string]string

	seen         map[string]bool
	unresolved   []string
	unresolvedBy map[string]bool
}

// NewResolver creates a resolver. stdlib and local hold the module
// names to drop before resolution; nameMap corrects import names whose
// distribution is published under a different name.
func NewResolver(idx *index.Installed, stdlib, local map[string]bool, nameMap map[string]string) *Resolver {
	return &Resolver{
		index:        idx,
		stdlib:       stdlib,
		local:        local,
		nameMap:      nameMap,
		seen:         make(map[string]bool),
		unresolvedBy: make(map[string]bool),
	}
}

// Keep reports whether a module survives filtering: neither part of
// the standard library nor defined by the project itself.
func (r *Resolver) Keep(module string) bool {
	if module == "" {
		return false
	}
	return !r.stdlib[module] && !r.local[module]
}

// Filter drops stdlib and project-local modules and returns the
// survivors deduplicated and sorted.
func (r *Resolver) Filter(modules []string) []string {
	seen := make(map[string]bool)
	var kept []string
	for _, module := range modules {
		if !r.Keep(module) || seen[module] {
			continue
		}
		seen[module] = true
		kept = append(kept, module)
	}
	sort.Strings(kept)
	return kept
}

// Resolve maps import names to their distributions and pins the
// installed versions. Names with no installed distribution are
// recorded for the unresolved report instead of being returned.
func (r *Resolver) Resolve(modules []string) []pypi.Requirement {
	var reqs []pypi.Requirement
	for _, module := range modules {
		name := r.distributionName(module)
		dist, ok := r.index.Lookup(name)
		if !ok {
			// The report carries the import name so the user can map it.
			r.addUnresolved(module)
			continue
		}
		if req, ok := r.emit(dist.Name, dist.Version); ok {
			logrus.Infof("found %s==%s (from import %q)", dist.Name, dist.Version, module)
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// ResolveSuggested resolves model-suggested distribution names,
// sorted lexicographically for reproducible output. Suggestions still
// pass through the name map in case the model answered with an import
// name; ones with no installed distribution are warned about inline
// and recorded as unresolved.
func (r *Resolver) ResolveSuggested(names []string) []pypi.Requirement {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var reqs []pypi.Requirement
	for _, name := range sorted {
		dist, ok := r.index.Lookup(r.distributionName(name))
		if !ok {
			logrus.Warnf("suggested package %q is not installed or could not be found", name)
			r.addUnresolved(name)
			continue
		}
		if req, ok := r.emit(dist.Name, dist.Version); ok {
			logrus.Infof("found %s==%s", dist.Name, dist.Version)
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// ResolveTools pins command-line and deploy tools that are installed
// but never imported, such as gunicorn or black. Tools missing from
// the environment are skipped silently.
func (r *Resolver) ResolveTools(tools []string) []pypi.Requirement {
	var reqs []pypi.Requirement
	for _, tool := range tools {
		dist, ok := r.index.Lookup(tool)
		if !ok {
			continue
		}
		if req, ok := r.emit(dist.Name, dist.Version); ok {
			logrus.Infof("found %s==%s (as a known tool)", dist.Name, dist.Version)
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// Unresolved returns the distribution names that could not be pinned,
// sorted and deduplicated.
func (r *Resolver) Unresolved() []string {
	names := append([]string(nil), r.unresolved...)
	sort.Strings(names)
	return names
}

// distributionName applies the import-to-distribution corrections; a
// name without a correction maps to itself.
func (r *Resolver) distributionName(module string) string {
	if name, ok := r.nameMap[module]; ok {
		return name
	}
	return module
}

// emit deduplicates by normalized distribution name, first hit wins.
func (r *Resolver) emit(name, version string) (pypi.Requirement, bool) {
	key := pypi.NormalizeName(name)
	if r.seen[key] {
		return pypi.Requirement{}, false
	}
	r.seen[key] = true
	return pypi.Requirement{Name: name, Version: version}, true
}

func (r *Resolver) addUnresolved(name string) {
	key := pypi.NormalizeName(name)
	if r.unresolvedBy[key] {
		return
	}
	r.unresolvedBy[key] = true
	r.unresolved = append(r.unresolved, name)
}
