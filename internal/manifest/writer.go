package manifest

import (
	"fmt"
	"os"

	"github.com/inevitablegs/ReqTxtGenerator/internal/pypi"
)

// WriteFile writes the requirements to path, replacing any existing
// file. The content goes to a temporary file first and is renamed into
// place, so an interrupted run cannot leave a half-written manifest.
func WriteFile(path, header string, reqs []pypi.Requirement) error {
	tmpPath := path + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	err = NewEmitter(out, header).Emit(reqs)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming file: %w", err)
	}

	return nil
}
