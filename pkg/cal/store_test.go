package cal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, 1.0, d.VoltageFactor)
	assert.Zero(t, d.ResistanceOffset)
	assert.Zero(t, d.CapacitanceOffset)
	assert.False(t, d.Calibrated)
}

func TestFileStore_MissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	d, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), d)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "calibration.json"))

	want := Data{
		VoltageFactor:     1.0204,
		ResistanceOffset:  0.29,
		CapacitanceOffset: 73.5,
		Calibrated:        true,
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_ZeroFactorRejected(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "calibration.json"))
	require.NoError(t, s.Save(Data{VoltageFactor: 0, Calibrated: true}))

	d, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.VoltageFactor)
	assert.False(t, d.Calibrated)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	d, err := NewFileStore(path).Load()
	assert.Error(t, err)
	assert.Equal(t, Default(), d)
}
