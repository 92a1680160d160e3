package docstore

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNotFound = errors.New("document not found")

// PageChunk is one passage of page text produced at ingestion. Order is
// unique and strictly increasing within a document.
type PageChunk struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Page    int    `json:"page"`
	Section string `json:"section"`
	Order   int    `json:"order"`
}

// Chunk is a PageChunk plus its embedding vector. The vector is owned by
// the DocumentEntry and is never mutated after ingestion.
type Chunk struct {
	PageChunk
	Embedding []float32 `json:"-"`
}

// ScheduleItem is a single timetable row. Location is nil when no
// location could be recovered for the row.
type ScheduleItem struct {
	Time     string  `json:"time"`
	Activity string  `json:"activity"`
	Location *string `json:"location"`
}

// ScheduleDay groups items under one day heading. Titles are unique
// within a document.
type ScheduleDay struct {
	Title string         `json:"title"`
	Items []ScheduleItem `json:"items"`
}

// DocumentEntry holds everything derived from one uploaded guide. An
// entry is built completely before it is installed in the store, so
// readers never observe a partial document.
type DocumentEntry struct {
	ID         string        `json:"document_id"`
	Filename   string        `json:"filename"`
	PageCount  int           `json:"page_count"`
	UploadedAt time.Time     `json:"uploaded_at"`
	Chunks     []Chunk       `json:"-"`
	Schedule   []ScheduleDay `json:"schedule"`
}

// Store is an in-memory document collection keyed by document id.
// Re-ingesting an id replaces the previous entry wholesale.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*DocumentEntry
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*DocumentEntry),
	}
}

func (s *Store) Put(entry *DocumentEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
}

func (s *Store) Get(id string) (*DocumentEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	return entry, ok
}

func (s *Store) Require(id string) (*DocumentEntry, error) {
	entry, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

func (s *Store) List() []*DocumentEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*DocumentEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	return entries
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
