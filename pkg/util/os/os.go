package os

import (
	"fmt"
	"os"
)

// CreateDir creates dir, failing if it already exists.
func CreateDir(dir string) error {
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CreateExclusive creates path for writing, failing if it already exists.
func CreateExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return f, nil
}
