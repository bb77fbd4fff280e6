// Package seed loads the demo teacher, students and classes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
)

// Target is a store able to receive seed data.
type Target interface {
	PutClass(ctx context.Context, cls attendance.Class) error
	UserByEmail(ctx context.Context, email string) (attendance.User, error)
	CreateUser(ctx context.Context, u attendance.User) (attendance.User, error)
}

const (
	TeacherID       = "user_t001"
	TeacherEmail    = "teacher@demo.com"
	TeacherPassword = "password"
	TeacherName     = "Professor Jane"
)

// Students is the shared demo roster.
var Students = []attendance.Student{
	{ID: "s001", Name: "Emily Clark"},
	{ID: "s002", Name: "David Lee"},
	{ID: "s003", Name: "Sophia Chen"},
	{ID: "s004", Name: "Michael Rodriguez"},
	{ID: "s005", Name: "Olivia Wilson"},
	{ID: "s006", Name: "James Brown"},
	{ID: "s007", Name: "Ava Martinez"},
	{ID: "s008", Name: "Ethan Garcia"},
	{ID: "s009", Name: "Isabella Scott"},
	{ID: "s010", Name: "Noah King"},
}

// Classes returns the demo classes, all taught by the demo teacher.
func Classes() []attendance.Class {
	names := []struct{ id, name string }{
		{"c001", "Advanced Calculus"},
		{"c002", "Web Development (React)"},
		{"c003", "Database Management"},
		{"c004", "Software Testing"},
	}
	out := make([]attendance.Class, 0, len(names))
	for _, n := range names {
		out = append(out, attendance.Class{
			ID:        n.id,
			Name:      n.name,
			TeacherID: TeacherID,
			Students:  append([]attendance.Student(nil), Students...),
		})
	}
	return out
}

// Run creates the demo teacher if missing and upserts the demo classes.
// Running it twice leaves the same data.
func Run(ctx context.Context, t Target) error {
	_, err := t.UserByEmail(ctx, TeacherEmail)
	switch {
	case errors.Is(err, attendance.ErrUserNotFound):
		hash, herr := auth.HashPassword(TeacherPassword)
		if herr != nil {
			return fmt.Errorf("seed teacher: %w", herr)
		}
		if _, err := t.CreateUser(ctx, attendance.User{
			ID:           TeacherID,
			Name:         TeacherName,
			Email:        TeacherEmail,
			Role:         attendance.RoleTeacher,
			PasswordHash: hash,
		}); err != nil {
			return fmt.Errorf("seed teacher: %w", err)
		}
		log.Println("seed: default teacher created")
	case err != nil:
		return fmt.Errorf("seed teacher lookup: %w", err)
	}

	for _, cls := range Classes() {
		if err := t.PutClass(ctx, cls); err != nil {
			return fmt.Errorf("seed class %s: %w", cls.ID, err)
		}
	}
	log.Println("seed: demo classes ready")
	return nil
}
