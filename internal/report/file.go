package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/biomail/internal/model"
)

// WriteFile writes the rows of run to path in the given format.
// It returns ErrNoRows without touching the file system when the run
// has nothing to write. A partially written file is removed on error.
func WriteFile(path string, format Format, run *model.Run) error {
	if run == nil || !run.HasRows() {
		return ErrNoRows
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := NewWriter(format, f)
	if err == nil {
		_, err = w.Write(run)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", path, err), os.Remove(path))
	}
	return nil
}
