package testutil

import (
	"context"
	"sync"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// NotifySpy records notifications emitted by the store.
type NotifySpy struct {
	mu      sync.Mutex
	entries []NotifyEntry
}

type NotifyEntry struct {
	Level    string
	ClinicID string
	Message  string
}

func NewNotifySpy() *NotifySpy {
	return &NotifySpy{}
}

func (s *NotifySpy) Info(clinicID, message string) { s.add("info", clinicID, message) }
func (s *NotifySpy) Warn(clinicID, message string) { s.add("warning", clinicID, message) }
func (s *NotifySpy) Error(clinicID, message string) {
	s.add("error", clinicID, message)
}

func (s *NotifySpy) add(level, clinicID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, NotifyEntry{Level: level, ClinicID: clinicID, Message: message})
}

// Entries returns a copy of everything recorded so far.
func (s *NotifySpy) Entries() []NotifyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NotifyEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// CountLevel returns how many notifications of one level were recorded.
func (s *NotifySpy) CountLevel(level string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// ChangeSpy records change events published by the store.
type ChangeSpy struct {
	mu     sync.Mutex
	events []ChangeEntry
}

type ChangeEntry struct {
	ClinicID string
	Table    collection.Name
	Action   string
	RecordID string
}

func NewChangeSpy() *ChangeSpy {
	return &ChangeSpy{}
}

func (s *ChangeSpy) PublishChange(ctx context.Context, clinicID string, table collection.Name, action, recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ChangeEntry{ClinicID: clinicID, Table: table, Action: action, RecordID: recordID})
}

// Events returns a copy of everything published so far.
func (s *ChangeSpy) Events() []ChangeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChangeEntry, len(s.events))
	copy(out, s.events)
	return out
}
