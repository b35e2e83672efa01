// Package fileutil holds small filesystem helpers shared by the writers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to a hidden sibling temp file and renames it over
// path, so readers never observe a partially written file. The temp file is
// removed on any failure.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		_ = os.Remove(tmpPath)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return cleanup(fmt.Errorf("write %s: %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return cleanup(fmt.Errorf("sync %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return cleanup(err)
	}
	return nil
}
