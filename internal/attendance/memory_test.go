package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLatestRecordOrdering(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, err := mem.LatestRecord(ctx, "c1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	day1 := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC)

	r2, err := mem.InsertRecord(ctx, Record{ClassID: "c1", Date: day2})
	require.NoError(t, err)
	_, err = mem.InsertRecord(ctx, Record{ClassID: "c1", Date: day1})
	require.NoError(t, err)
	_, err = mem.InsertRecord(ctx, Record{ClassID: "other", Date: day2.AddDate(0, 0, 5)})
	require.NoError(t, err)

	got, err := mem.LatestRecord(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, r2, got.ID, "an older date inserted later must not win")
	assert.Equal(t, Day(day2), got.Date)

	r3, err := mem.InsertRecord(ctx, Record{ClassID: "c1", Date: day2.Add(3 * time.Hour)})
	require.NoError(t, err)
	got, err = mem.LatestRecord(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, r3, got.ID, "same day goes to the most recent insert")
}

func TestMemoryReturnsCopies(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutClass(ctx, Class{ID: "c1", Students: []Student{{ID: "s1"}}}))

	cls, err := mem.Class(ctx, "c1")
	require.NoError(t, err)
	cls.Students[0].ID = "mutated"

	again, err := mem.Class(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "s1", again.Students[0].ID)
}

func TestMemoryPutClassReplaces(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutClass(ctx, Class{ID: "c1", Name: "Old"}))
	require.NoError(t, mem.PutClass(ctx, Class{ID: "c1", Name: "New"}))

	all, err := mem.Classes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New", all[0].Name)

	_, err = mem.Class(ctx, "c2")
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestMemoryUsers(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	u, err := mem.CreateUser(ctx, User{Name: "Jane", Email: " Jane@Example.com ", Role: RoleTeacher})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := mem.UserByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := mem.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", byID.Name)

	_, err = mem.CreateUser(ctx, User{Name: "Other", Email: "jane@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = mem.User(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, IsNotFound(err))
}
