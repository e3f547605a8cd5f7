package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilePersister writes artifacts atomically: a temp file in the target
// directory is synced and renamed into place, so a failed write never
// leaves a truncated chart behind.
type FilePersister struct {
	DirMode  os.FileMode
	FileMode os.FileMode
}

func NewFilePersister() *FilePersister {
	return &FilePersister{DirMode: 0o755, FileMode: 0o644}
}

func (p *FilePersister) Persist(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, p.DirMode); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, p.FileMode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	ok = true
	return nil
}
