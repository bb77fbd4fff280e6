package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Status is one of the three attendance states a student can be marked with.
type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
	Late    Status = "Late"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{Present, Absent, Late}

// ParseStatus normalizes s to a canonical Status. Matching ignores case and
// surrounding whitespace; anything outside the closed set is rejected.
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(v, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Student is a roster member.
type Student struct {
	ID   string `json:"studentId" bson:"studentId"`
	Name string `json:"name" bson:"name"`
}

// Class owns an ordered roster.
type Class struct {
	ID        string
	Name      string
	TeacherID string
	Students  []Student
}

// Entry is a single student's mark inside a record.
type Entry struct {
	StudentID string `json:"studentId" bson:"studentId"`
	Status    Status `json:"status" bson:"status"`
}

// Record is one persisted roll call for a class on a calendar day.
type Record struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"classId"`
	ClassName  string    `json:"className"`
	Date       time.Time `json:"date"`
	Entries    []Entry   `json:"studentStatuses"`
	RecordedBy string    `json:"recordedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summary counts marks per status.
type Summary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Total   int `json:"total"`
}

// Summarize aggregates entries by status.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Status {
		case Present:
			s.Present++
		case Absent:
			s.Absent++
		case Late:
			s.Late++
		}
		s.Total++
	}
	return s
}

// Role names accepted for users.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is an account able to sign in and submit records.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts YYYY-MM-DD or an RFC3339 timestamp and returns the calendar day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
