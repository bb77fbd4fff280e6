package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/attendance"
)

type fakeOverview struct {
	classes []attendance.ClassSummary
	err     error
}

func (f fakeOverview) ClassOverview(context.Context) ([]attendance.ClassSummary, error) {
	return f.classes, f.err
}

func TestTeacherDashboard(t *testing.T) {
	last := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(fakeOverview{classes: []attendance.ClassSummary{
		{ID: "c1", Name: "Algebra", StudentCount: 3, LastTaken: &last},
	}})

	v, err := r.Dashboard(context.Background(), attendance.RoleTeacher, "t1")
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleTeacher, v.Role)
	require.Len(t, v.Classes, 1)
	assert.Equal(t, "c1", v.Classes[0].ID)
}

func TestUnsupportedRoles(t *testing.T) {
	r := NewRegistry(fakeOverview{})
	for _, role := range []string{attendance.RoleStudent, attendance.RoleAdmin, "janitor", ""} {
		_, err := r.Dashboard(context.Background(), role, "u1")
		assert.ErrorIs(t, err, ErrUnsupported, "role %q", role)
	}
}

func TestRegisterOverrides(t *testing.T) {
	r := NewRegistry(fakeOverview{})
	r.Register(attendance.RoleStudent, ProviderFunc(func(_ context.Context, userID string) (View, error) {
		return View{Role: attendance.RoleStudent}, nil
	}))
	v, err := r.Dashboard(context.Background(), attendance.RoleStudent, "s1")
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleStudent, v.Role)
}

func TestTeacherDashboardPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(fakeOverview{err: boom})
	_, err := r.Dashboard(context.Background(), attendance.RoleTeacher, "t1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrUnsupported))
}
