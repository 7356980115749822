// Package filestore persists the quarantine set to a YAML file on disk,
// matching the original on-disk format (version/updated_at_ts/symbols map).
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/solarb/arbitrage-detector/business/quarantine/domain"
)

type fileEntry struct {
	Reason string `yaml:"reason"`
	Until  int64  `yaml:"until"`
}

type filePayload struct {
	Version     int                  `yaml:"version"`
	UpdatedAtTS int64                `yaml:"updated_at_ts"`
	Symbols     map[string]fileEntry `yaml:"symbols"`
}

// Store reads and writes the quarantine file.
type Store struct {
	path string
}

// New creates a Store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// ModTime returns the file's last modification time, or the zero time if it
// does not exist.
func (s *Store) ModTime() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Load reads the quarantine file. A missing or malformed file yields an
// empty set, never an error, matching the durability goal: a corrupt
// quarantine file must never prevent startup.
func (s *Store) Load() map[string]domain.Entry {
	out := make(map[string]domain.Entry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return out
	}

	var payload filePayload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return out
	}

	for sym, fe := range payload.Symbols {
		reason := fe.Reason
		if reason == "" {
			reason = "unknown"
		}
		out[sym] = domain.Entry{Reason: domain.Reason(reason), UntilTS: fe.Until}
	}
	return out
}

// Save atomically replaces the quarantine file: write to a temp file in the
// same directory, then rename over the target, so a crash mid-write never
// leaves a truncated file in place.
func (s *Store) Save(entries map[string]domain.Entry) error {
	symbols := make(map[string]fileEntry, len(entries))
	keys := make([]string, 0, len(entries))
	for sym := range entries {
		keys = append(keys, sym)
	}
	sort.Strings(keys)
	for _, sym := range keys {
		e := entries[sym]
		symbols[sym] = fileEntry{Reason: string(e.Reason), Until: e.UntilTS}
	}

	payload := filePayload{
		Version:     1,
		UpdatedAtTS: time.Now().Unix(),
		Symbols:     symbols,
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("filestore: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".quarantine-*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}

// PruneExpired drops entries whose deadline has passed at ts.
func PruneExpired(entries map[string]domain.Entry, ts time.Time) map[string]domain.Entry {
	out := make(map[string]domain.Entry, len(entries))
	for sym, e := range entries {
		if !e.Expired(ts) {
			out[sym] = e
		}
	}
	return out
}
