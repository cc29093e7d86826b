package manifest

import (
	"reflect"
	"testing"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

func TestDiff(t *testing.T) {
	existing := []pypi.Requirement{
		{Name: "Django", Version: "5.0.6"},
		{Name: "requests", Version: "2.28.0"},
		{Name: "gone-package", Version: "1.0.0"},
		{Name: "typing_extensions", Version: "4.8.0"},
	}
	fresh := []pypi.Requirement{
		{Name: "Django", Version: "5.0.6"},
		{Name: "requests", Version: "2.31.0"},
		{Name: "celery", Version: "5.4.0"},
		{Name: "typing-extensions", Version: "4.8.0"},
	}

	got := Diff(existing, fresh)
	want := []Change{
		{Kind: Added, Name: "celery", Want: "5.4.0"},
		{Kind: Removed, Name: "gone-package", Have: "1.0.0"},
		{Kind: Changed, Name: "requests", Have: "2.28.0", Want: "2.31.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}
}

func TestDiff_NoDrift(t *testing.T) {
	reqs := []pypi.Requirement{{Name: "flask", Version: "3.0.3"}}

	if got := Diff(reqs, reqs); len(got) != 0 {
		t.Errorf("Diff() = %v, want empty", got)
	}
}

func TestChange_String(t *testing.T) {
	tests := []struct {
		change Change
		want   string
	}{
		{Change{Kind: Added, Name: "celery", Want: "5.4.0"}, "+ celery==5.4.0"},
		{Change{Kind: Added, Name: "celery"}, "+ celery"},
		{Change{Kind: Removed, Name: "gone-package", Have: "1.0.0"}, "- gone-package==1.0.0"},
		{Change{Kind: Changed, Name: "requests", Have: "2.28.0", Want: "2.31.0"}, "~ requests: 2.28.0 -> 2.31.0"},
		{Change{Kind: Changed, Name: "requests", Have: "", Want: "2.31.0"}, "~ requests: unpinned -> 2.31.0"},
	}

	for _, tt := range tests {
		if got := tt.change.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
