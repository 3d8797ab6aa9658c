// Package notify keeps the per-clinic notification feed. Every store
// mutation and load outcome lands here; clients poll the feed to render it.
// Presentation is out of scope, the feed is the contract.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one user-visible outcome.
type Notification struct {
	ID        string    `json:"id"`
	ClinicID  string    `json:"clinic_id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// keep bounds the per-clinic feed length.
const keep = 200

// Center is an in-memory, process-lifetime notification feed.
type Center struct {
	mu       sync.Mutex
	byClinic map[string][]Notification
	now      func() time.Time
}

func NewCenter() *Center {
	return &Center{
		byClinic: make(map[string][]Notification),
		now:      time.Now,
	}
}

func (c *Center) Info(clinicID, message string)  { c.add(clinicID, LevelInfo, message) }
func (c *Center) Warn(clinicID, message string)  { c.add(clinicID, LevelWarning, message) }
func (c *Center) Error(clinicID, message string) { c.add(clinicID, LevelError, message) }

func (c *Center) add(clinicID string, level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	feed := append(c.byClinic[clinicID], Notification{
		ID:        uuid.New().String(),
		ClinicID:  clinicID,
		Level:     level,
		Message:   message,
		CreatedAt: c.now(),
	})
	if len(feed) > keep {
		feed = feed[len(feed)-keep:]
	}
	c.byClinic[clinicID] = feed
}

// Recent returns up to limit notifications for a clinic, newest first.
func (c *Center) Recent(clinicID string, limit int) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	feed := c.byClinic[clinicID]
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	out := make([]Notification, 0, limit)
	for i := len(feed) - 1; i >= len(feed)-limit; i-- {
		out = append(out, feed[i])
	}
	return out
}
