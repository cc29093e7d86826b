package manifest

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// Header variants for the generated file, naming the pipeline that
// produced it.
const (
	ScannerHeader = "# Generated by project scanner. Review for accuracy.\n" +
		"# This file lists direct dependencies. Sub-dependencies are handled by pip.\n\n"
	GeminiHeader = "# Generated by Gemini AI. Review for accuracy.\n" +
		"# This file lists the direct dependencies identified from the source code.\n\n"
)

// Emitter writes requirements.txt files.
type Emitter struct {
	w      io.Writer
	header string
}

// NewEmitter creates a manifest emitter that opens its output with the
// given header.
func NewEmitter(w io.Writer, header string) *Emitter {
	return &Emitter{w: w, header: header}
}

// Emit writes the requirements sorted case-insensitively by name.
// Pinned entries render as name==version, the rest as the bare name.
func (e *Emitter) Emit(reqs []pypi.Requirement) error {
	sorted := make([]pypi.Requirement, len(reqs))
	copy(sorted, reqs)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	if _, err := fmt.Fprint(e.w, e.header); err != nil {
		return err
	}

	for _, req := range sorted {
		if _, err := fmt.Fprintf(e.w, "%s\n", formatLine(req)); err != nil {
			return err
		}
	}

	return nil
}

func formatLine(req pypi.Requirement) string {
	if req.Version == "" {
		return req.Name
	}
	return fmt.Sprintf("%s==%s", req.Name, req.Version)
}
