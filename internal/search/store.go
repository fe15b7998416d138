package search

import "chatsearch/internal/domain"

// NotFound is returned by IndexOf when a message is not loaded
const NotFound = -1

// ResultStore accumulates the matches of one search session in arrival
// order, with an id index kept in step by its only mutators, Append and Clear.
type ResultStore struct {
	ordered []domain.Message
	byID    map[domain.MessageID]domain.Message
}

// NewResultStore creates an empty store
func NewResultStore() *ResultStore {
	return &ResultStore{
		byID: make(map[domain.MessageID]domain.Message),
	}
}

// Append adds messages in arrival order. Duplicates are not filtered: a
// repeated id gets a second position and the latest payload in the index.
func (s *ResultStore) Append(messages ...domain.Message) {
	for _, m := range messages {
		s.ordered = append(s.ordered, m)
		s.byID[m.ID] = m
	}
}

// Clear empties the store
func (s *ResultStore) Clear() {
	s.ordered = nil
	clear(s.byID)
}

// Len returns the number of loaded positions
func (s *ResultStore) Len() int {
	return len(s.ordered)
}

// At returns the message at position i
func (s *ResultStore) At(i int) (domain.Message, bool) {
	if i < 0 || i >= len(s.ordered) {
		return domain.Message{}, false
	}
	return s.ordered[i], true
}

// Last returns the most recently appended message
func (s *ResultStore) Last() (domain.Message, bool) {
	return s.At(len(s.ordered) - 1)
}

// Contains reports whether id is loaded
func (s *ResultStore) Contains(id domain.MessageID) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the loaded payload for id
func (s *ResultStore) Get(id domain.MessageID) (domain.Message, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// IndexOf returns the first position of id, or NotFound. The index map is
// consulted first so absent ids never cost a scan.
func (s *ResultStore) IndexOf(id domain.MessageID) int {
	if !s.Contains(id) {
		return NotFound
	}
	for i, m := range s.ordered {
		if m.ID == id {
			return i
		}
	}
	return NotFound
}
