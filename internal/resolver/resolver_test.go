package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/inevitablegs/ReqTxtGenerator/internal/index"
	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// buildIndex creates an installed-distribution index over a synthetic
// site-packages directory.
func buildIndex(t *testing.T, dists map[string]string) *index.Installed {
	t.Helper()
	site := t.TempDir()
	for name, version := range dists {
		escaped := strings.ReplaceAll(name, "-", "_")
		dir := filepath.Join(site, fmt.Sprintf("%s-%s.dist-info", escaped, version))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		metadata := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n", name, version)
		if err := os.WriteFile(filepath.Join(dir, "METADATA"), []byte(metadata), 0644); err != nil {
			t.Fatal(err)
		}
	}
	idx := index.NewInstalled(site)
	idx.Load()
	return idx
}

func newTestResolver(t *testing.T, dists map[string]string) *Resolver {
	t.Helper()
	stdlib := map[string]bool{"os": true, "sys": true, "json": true}
	local := map[string]bool{"myapp": true}
	return NewResolver(buildIndex(t, dists), stdlib, local, pypi.ImportToPyPI)
}

func TestResolver_Keep(t *testing.T) {
	r := newTestResolver(t, nil)

	tests := []struct {
		module string
		want   bool
	}{
		{"django", true},
		{"requests", true},
		{"os", false},
		{"sys", false},
		{"myapp", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := r.Keep(tt.module); got != tt.want {
			t.Errorf("Keep(%q) = %v, want %v", tt.module, got, tt.want)
		}
	}
}

func TestResolver_Filter(t *testing.T) {
	r := newTestResolver(t, nil)

	got := r.Filter([]string{"os", "requests", "myapp", "django", "sys", "requests"})
	want := []string{"django", "requests"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"requests":       "2.31.0",
		"beautifulsoup4": "4.12.3",
		"PyYAML":         "6.0.1",
	})

	got := r.Resolve([]string{"bs4", "requests", "yaml", "cv2", "missingpkg"})
	want := []pypi.Requirement{
		{Name: "beautifulsoup4", Version: "4.12.3"},
		{Name: "requests", Version: "2.31.0"},
		{Name: "PyYAML", Version: "6.0.1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}

	// The report lists import names, cv2 rather than opencv-python.
	unresolved := r.Unresolved()
	if !reflect.DeepEqual(unresolved, []string{"cv2", "missingpkg"}) {
		t.Errorf("Unresolved() = %v, want [cv2 missingpkg]", unresolved)
	}
}

func TestResolver_Resolve_Dedup(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"PyYAML": "6.0.1",
		"pytest": "8.2.0",
	})

	first := r.Resolve([]string{"yaml", "pytest"})
	if len(first) != 2 {
		t.Fatalf("Resolve() returned %d requirements, want 2", len(first))
	}

	// The same distributions through other entry points emit nothing.
	if again := r.ResolveSuggested([]string{"PyYAML"}); len(again) != 0 {
		t.Errorf("ResolveSuggested() = %v, want empty", again)
	}
	if tools := r.ResolveTools([]string{"pytest"}); len(tools) != 0 {
		t.Errorf("ResolveTools() = %v, want empty", tools)
	}
}

func TestResolver_ResolveSuggested(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"Django":         "5.0.6",
		"beautifulsoup4": "4.12.3",
	})

	got := r.ResolveSuggested([]string{"missing-package", "Django", "bs4"})
	want := []pypi.Requirement{
		{Name: "Django", Version: "5.0.6"},
		{Name: "beautifulsoup4", Version: "4.12.3"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveSuggested() = %v, want %v", got, want)
	}

	// The suggestion that is not installed generates no manifest line
	// and lands in the unresolved report under its suggested name.
	unresolved := r.Unresolved()
	if !reflect.DeepEqual(unresolved, []string{"missing-package"}) {
		t.Errorf("Unresolved() = %v, want [missing-package]", unresolved)
	}
}

func TestResolver_ResolveTools(t *testing.T) {
	r := newTestResolver(t, map[string]string{"gunicorn": "22.0.0"})

	got := r.ResolveTools([]string{"gunicorn", "black"})
	want := []pypi.Requirement{{Name: "gunicorn", Version: "22.0.0"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveTools() = %v, want %v", got, want)
	}

	if unresolved := r.Unresolved(); len(unresolved) != 0 {
		t.Errorf("Unresolved() = %v, want empty", unresolved)
	}
}

func TestResolver_Unresolved_Sorted(t *testing.T) {
	r := newTestResolver(t, nil)

	r.Resolve([]string{"zebra", "alpha", "zebra"})
	got := r.Unresolved()
	want := []string{"alpha", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unresolved() = %v, want %v", got, want)
	}
}
