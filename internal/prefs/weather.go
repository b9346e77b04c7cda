// Package prefs remembers the last chosen city and units between runs.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const weatherFile = "weather.json"

// Weather is the persisted weather selection.
type Weather struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Units     string  `json:"units"`
}

// Store reads and writes preference files under a directory.
type Store struct {
	dir string
}

// NewStore uses dir, or the user config directory when dir is empty.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "tuidispatch")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, weatherFile)
}

// SaveWeather writes w atomically.
func (s *Store) SaveWeather(w Weather) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

// LoadWeather returns the saved selection. ok is false when nothing was
// saved yet.
func (s *Store) LoadWeather() (w Weather, ok bool, err error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Weather{}, false, nil
		}
		return Weather{}, false, err
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return Weather{}, false, fmt.Errorf("decode %s: %w", weatherFile, err)
	}
	return w, true, nil
}
