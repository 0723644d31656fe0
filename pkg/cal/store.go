package cal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Store persists the calibration record across power cycles.
type Store interface {
	// Load returns the stored record, or the uncalibrated defaults when no
	// valid record exists.
	Load() (Data, error)
	Save(Data) error
}

// FileStore keeps the record in a JSON file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load() (Data, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Default(), fmt.Errorf("failed to parse calibration file: %w", err)
	}
	if d.VoltageFactor == 0 {
		// A zero scale would silence every measurement; treat as invalid.
		d.VoltageFactor = 1.0
		d.Calibrated = false
	}
	return d, nil
}

// Save implements Store.
func (s *FileStore) Save(d Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calibration: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	return nil
}
