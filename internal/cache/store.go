package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"appwatch/pkg/logx"
)

// Record is the last-observed state of one watched app. The whole mapping
// is rewritten every run; entries are never deleted here.
type Record struct {
	Version   string    `json:"version"`
	AppName   string    `json:"app_name"`
	Region    string    `json:"region"`
	IconURL   string    `json:"icon"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists the version cache as a single pretty-printed JSON object,
// top-level keys = app ids. The file is meant to be human-inspectable.
type Store struct {
	path string
	log  logx.Logger
}

func NewStore(path string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{path: strings.TrimSpace(path), log: log}
}

func (s *Store) Path() string { return s.path }

// Load reads the persisted snapshot. A missing, unreadable, or structurally
// wrong file degrades to an empty mapping (first-run semantics) with a
// warning; a corrupt cache must never fail the run.
func (s *Store) Load() map[string]Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("cache file missing, treating as first run", logx.String("path", s.path))
		} else {
			s.log.Warn("cache unreadable, treating as first run", logx.String("path", s.path), logx.Err(err))
		}
		return map[string]Record{}
	}

	var m map[string]Record
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.Warn("cache malformed, treating as first run", logx.String("path", s.path), logx.Err(err))
		return map[string]Record{}
	}
	if m == nil {
		m = map[string]Record{}
	}

	s.log.Info("cache loaded", logx.String("path", s.path), logx.Int("apps", len(m)))
	return m
}

// Save writes the full snapshot via temp file + rename so a crash mid-write
// leaves the previous snapshot intact.
func (s *Store) Save(m map[string]Record) error {
	if m == nil {
		m = map[string]Record{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	s.log.Info("cache saved", logx.String("path", s.path), logx.Int("apps", len(m)))
	return nil
}
