package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
)

func TestRunIsIdempotent(t *testing.T) {
	mem := attendance.NewMemory()
	ctx := context.Background()

	require.NoError(t, Run(ctx, mem))
	require.NoError(t, Run(ctx, mem))

	classes, err := mem.Classes(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 4)
	for _, cls := range classes {
		assert.Equal(t, TeacherID, cls.TeacherID)
		assert.Len(t, cls.Students, len(Students))
	}

	u, err := mem.UserByEmail(ctx, TeacherEmail)
	require.NoError(t, err)
	assert.Equal(t, TeacherID, u.ID)
	assert.Equal(t, TeacherName, u.Name)
	assert.True(t, auth.CheckPassword(u.PasswordHash, TeacherPassword))
}

func TestClassesHaveIndependentRosters(t *testing.T) {
	cs := Classes()
	cs[0].Students[0].Name = "changed"
	assert.Equal(t, "Emily Clark", Classes()[0].Students[0].Name)
	assert.Equal(t, "Emily Clark", cs[1].Students[0].Name)
}
