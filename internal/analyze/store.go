package analyze

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mzorec/logsift/internal/domain"
)

// TemplateStore persists masked cluster templates across runs so that a
// recurring unknown pattern can be told apart from a brand-new one.
type TemplateStore struct {
	mu        sync.RWMutex
	path      string
	templates map[string]*StoredTemplate
}

// StoredTemplate is one persisted cluster template.
type StoredTemplate struct {
	Pattern    string    `json:"pattern"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	TotalCount int       `json:"total_count"`
}

type templatesFile struct {
	Version   int                        `json:"version"`
	Templates map[string]*StoredTemplate `json:"templates"`
}

// NewTemplateStore opens the store at path, defaulting to
// ~/.logsift/patterns.json. A missing file starts an empty store.
func NewTemplateStore(path string) *TemplateStore {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = filepath.Join(home, ".logsift", "patterns.json")
	}

	store := &TemplateStore{
		path:      path,
		templates: make(map[string]*StoredTemplate),
	}
	store.Load()
	return store
}

// Load reads templates from disk.
func (s *TemplateStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file templatesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	s.templates = file.Templates
	if s.templates == nil {
		s.templates = make(map[string]*StoredTemplate)
	}
	return nil
}

// Save writes templates to disk.
func (s *TemplateStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(templatesFile{
		Version:   1,
		Templates: s.templates,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Record updates one template's occurrence data. Returns true if the
// template was not previously known.
func (s *TemplateStore) Record(pattern string, count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.templates[pattern]; ok {
		existing.LastSeen = now
		existing.TotalCount += count
		return false
	}
	s.templates[pattern] = &StoredTemplate{
		Pattern:    pattern,
		FirstSeen:  now,
		LastSeen:   now,
		TotalCount: count,
	}
	return true
}

// Count returns the number of stored templates.
func (s *TemplateStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}

// AnnotatedCluster extends a Cluster with knowledge status from the store.
type AnnotatedCluster struct {
	domain.Cluster
	IsNew      bool       `json:"is_new"`
	FirstSeen  *time.Time `json:"first_seen,omitempty"`
	TotalCount int        `json:"total_count,omitempty"`
}

// RecordClusters records every cluster and returns them annotated with
// new/known status.
func (s *TemplateStore) RecordClusters(clusters []domain.Cluster) []AnnotatedCluster {
	result := make([]AnnotatedCluster, len(clusters))
	for i, c := range clusters {
		isNew := s.Record(c.Pattern, c.Count)

		annotated := AnnotatedCluster{Cluster: c, IsNew: isNew}
		s.mu.RLock()
		if stored, ok := s.templates[c.Pattern]; ok {
			annotated.FirstSeen = &stored.FirstSeen
			annotated.TotalCount = stored.TotalCount
		}
		s.mu.RUnlock()
		result[i] = annotated
	}
	return result
}
