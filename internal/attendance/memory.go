package attendance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store for development and tests.
type Memory struct {
	mu      sync.RWMutex
	classes []Class
	records []Record
	users   map[string]User
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]User)}
}

// PutClass adds or replaces a class.
func (m *Memory) PutClass(_ context.Context, cls Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cls.Students = append([]Student(nil), cls.Students...)
	for i := range m.classes {
		if m.classes[i].ID == cls.ID {
			m.classes[i] = cls
			return nil
		}
	}
	m.classes = append(m.classes, cls)
	return nil
}

// Class returns a copy of the class and its roster.
func (m *Memory) Class(_ context.Context, classID string) (Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cls := range m.classes {
		if cls.ID == classID {
			cls.Students = append([]Student(nil), cls.Students...)
			return cls, nil
		}
	}
	return Class{}, fmt.Errorf("%w: %q", ErrClassNotFound, classID)
}

// Classes returns every class in insertion order.
func (m *Memory) Classes(_ context.Context) ([]Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Class, len(m.classes))
	for i, cls := range m.classes {
		cls.Students = append([]Student(nil), cls.Students...)
		out[i] = cls
	}
	return out, nil
}

// InsertRecord appends a record, normalising its date to the calendar day.
func (m *Memory) InsertRecord(_ context.Context, rec Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Date = Day(rec.Date)
	rec.CreatedAt = time.Now().UTC()
	rec.Entries = append([]Entry(nil), rec.Entries...)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

// LatestRecord scans backwards so that among equal dates the last insert wins.
func (m *Memory) LatestRecord(_ context.Context, classID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := -1
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.ClassID != classID {
			continue
		}
		if best < 0 || r.Date.After(m.records[best].Date) {
			best = i
		}
	}
	if best < 0 {
		return Record{}, fmt.Errorf("%w for class %q", ErrRecordNotFound, classID)
	}
	rec := m.records[best]
	rec.Entries = append([]Entry(nil), rec.Entries...)
	return rec, nil
}

// RecordCount returns how many records are stored.
func (m *Memory) RecordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// User returns a user by id.
func (m *Memory) User(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}
	return u, nil
}

// UserByEmail returns a user by case-insensitive email.
func (m *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, email)
}

// CreateUser stores a user; a duplicate email yields ErrEmailTaken.
func (m *Memory) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := m.users[u.ID]; ok {
		return User{}, ErrEmailTaken
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
	return u, nil
}
