package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rollcall/internal/metrics"
)

// Rosters reads class reference data.
type Rosters interface {
	Class(ctx context.Context, classID string) (Class, error)
	Classes(ctx context.Context) ([]Class, error)
}

// Records persists submitted roll calls.
type Records interface {
	InsertRecord(ctx context.Context, rec Record) (string, error)
	LatestRecord(ctx context.Context, classID string) (Record, error)
}

// Users resolves accounts.
type Users interface {
	User(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
}

// Store is implemented by every backend.
type Store interface {
	Rosters
	Records
	Users
}

// MissingPolicy decides what happens to roster members the client sent no mark for.
type MissingPolicy string

const (
	// MissingAbsent marks omitted students Absent.
	MissingAbsent MissingPolicy = "absent"
	// MissingReject fails the submission with ErrIncompleteRoll.
	MissingReject MissingPolicy = "reject"
)

// ParseMissingPolicy maps a config value to a policy.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingAbsent:
		return MissingAbsent, nil
	case MissingReject:
		return MissingReject, nil
	}
	return "", fmt.Errorf("unknown missing status policy %q", s)
}

// Mark is a client-provided status for one student.
type Mark struct {
	StudentID string
	Status    string
}

// Submission is the raw input of a roll call.
type Submission struct {
	ClassID     string
	ClassName   string
	Date        string
	Marks       []Mark
	SubmittedBy string
}

// View is the latest record joined with the submitter's name and per-status counts.
type View struct {
	Record  Record
	Teacher string
	Summary Summary
}

// ClassSummary is one row of the class overview.
type ClassSummary struct {
	ID           string
	Name         string
	StudentCount int
	LastTaken    *time.Time
}

// Service coordinates roll submission and retrieval.
type Service struct {
	rosters Rosters
	records Records
	users   Users
	missing MissingPolicy
	now     func() time.Time
}

// NewService creates a service backed by the given stores.
func NewService(rosters Rosters, records Records, users Users, missing MissingPolicy) *Service {
	if missing == "" {
		missing = MissingAbsent
	}
	return &Service{
		rosters: rosters,
		records: records,
		users:   users,
		missing: missing,
		now:     time.Now,
	}
}

// Roster returns the ordered students of a class.
func (s *Service) Roster(ctx context.Context, classID string) ([]Student, error) {
	cls, err := s.rosters.Class(ctx, classID)
	if err != nil {
		return nil, err
	}
	return cls.Students, nil
}

// Submit validates a roll call against the class roster and persists it.
// Nothing is written unless every check passes.
func (s *Service) Submit(ctx context.Context, sub Submission) (string, error) {
	id, err := s.submit(ctx, sub)
	metrics.ObserveSubmission(outcome(err))
	return id, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidInput(err):
		return "invalid"
	case IsNotFound(err):
		return "not_found"
	}
	return "error"
}

func (s *Service) submit(ctx context.Context, sub Submission) (string, error) {
	if strings.TrimSpace(sub.ClassID) == "" {
		return "", ErrMissingClass
	}
	cls, err := s.rosters.Class(ctx, sub.ClassID)
	if err != nil {
		return "", err
	}

	onRoster := make(map[string]bool, len(cls.Students))
	for _, st := range cls.Students {
		onRoster[st.ID] = true
	}

	marks := make(map[string]Status, len(sub.Marks))
	for _, m := range sub.Marks {
		if !onRoster[m.StudentID] {
			return "", fmt.Errorf("%w: %q", ErrUnknownStudent, m.StudentID)
		}
		if _, dup := marks[m.StudentID]; dup {
			return "", fmt.Errorf("%w: %q", ErrDuplicateStudent, m.StudentID)
		}
		st, err := ParseStatus(m.Status)
		if err != nil {
			return "", fmt.Errorf("student %q: %w", m.StudentID, err)
		}
		marks[m.StudentID] = st
	}

	entries := make([]Entry, 0, len(cls.Students))
	for _, st := range cls.Students {
		status, ok := marks[st.ID]
		if !ok {
			if s.missing == MissingReject {
				return "", fmt.Errorf("%w: %q", ErrIncompleteRoll, st.ID)
			}
			status = Absent
		}
		entries = append(entries, Entry{StudentID: st.ID, Status: status})
	}

	day := Day(s.now())
	if strings.TrimSpace(sub.Date) != "" {
		if day, err = ParseDay(sub.Date); err != nil {
			return "", err
		}
	}

	name := sub.ClassName
	if name == "" {
		name = cls.Name
	}

	return s.records.InsertRecord(ctx, Record{
		ClassID:    cls.ID,
		ClassName:  name,
		Date:       day,
		Entries:    entries,
		RecordedBy: sub.SubmittedBy,
	})
}

// ClassHistory returns the latest record of a class. The boolean is false when
// the class has no records yet, which is not an error.
func (s *Service) ClassHistory(ctx context.Context, classID string) (View, bool, error) {
	rec, err := s.records.LatestRecord(ctx, classID)
	if errors.Is(err, ErrRecordNotFound) {
		metrics.ObserveRetrieval("empty")
		return View{}, false, nil
	}
	if err != nil {
		metrics.ObserveRetrieval("error")
		return View{}, false, err
	}
	metrics.ObserveRetrieval("found")

	return View{
		Record:  rec,
		Teacher: s.displayName(ctx, rec.RecordedBy),
		Summary: Summarize(rec.Entries),
	}, true, nil
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	if s.users == nil || userID == "" {
		return userID
	}
	u, err := s.users.User(ctx, userID)
	if err != nil || u.Name == "" {
		return userID
	}
	return u.Name
}

// ClassOverview lists every class with its roster size and last roll date.
func (s *Service) ClassOverview(ctx context.Context) ([]ClassSummary, error) {
	classes, err := s.rosters.Classes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ClassSummary, 0, len(classes))
	for _, cls := range classes {
		sum := ClassSummary{ID: cls.ID, Name: cls.Name, StudentCount: len(cls.Students)}
		rec, err := s.records.LatestRecord(ctx, cls.ID)
		switch {
		case err == nil:
			d := rec.Date
			sum.LastTaken = &d
		case !errors.Is(err, ErrRecordNotFound):
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}
