// Package history persists the "continue watching" list: one entry per
// title, updated on every episode change. It is simple local persistence,
// deliberately outside the sync contract.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry records where the viewer left off in one title.
type Entry struct {
	ID            string `json:"id"`
	DataID        string `json:"data_id"`
	EpisodeID     string `json:"episodeId"`
	EpisodeNum    string `json:"episodeNum"`
	Title         string `json:"title"`
	JapaneseTitle string `json:"japanese_title,omitempty"`
	Poster        string `json:"poster,omitempty"`
	AdultContent  bool   `json:"adultContent,omitempty"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// Store is a JSON-file-backed continue-watching list keyed by DataID.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store persisting to path. The file is created on first
// write; a missing file reads as an empty list.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns all entries, most recently updated last.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Upsert records progress for a title: the existing entry with the same
// DataID is replaced in place, otherwise the entry is appended.
func (s *Store) Upsert(e Entry) error {
	if e.DataID == "" {
		return errors.New("entry missing data_id")
	}
	e.UpdatedAt = time.Now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range entries {
		if entries[i].DataID == e.DataID {
			entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, e)
	}
	return s.save(entries)
}

// Remove deletes the entry for a title, if present.
func (s *Store) Remove(dataID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.DataID != dataID {
			out = append(out, e)
		}
	}
	if len(out) == len(entries) {
		return nil
	}
	return s.save(out)
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return entries, nil
}

// save writes through a temp file and rename so a crash mid-write never
// leaves a truncated list.
func (s *Store) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
