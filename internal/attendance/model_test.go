package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"Present", Present, false},
		{"absent", Absent, false},
		{" LATE ", Late, false},
		{"Excused", "", true},
		{"", "", true},
		{"Presentt", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidStatus, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]Entry{
		{StudentID: "a", Status: Present},
		{StudentID: "b", Status: Present},
		{StudentID: "c", Status: Absent},
		{StudentID: "d", Status: Late},
	})
	assert.Equal(t, Summary{Present: 2, Absent: 1, Late: 1, Total: 4}, got)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	// the calendar day is taken in the timestamp's own offset
	d, err = ParseDay("2025-03-14T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("14/03/2025")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsInvalidInput(ErrInvalidStatus))
	assert.True(t, IsInvalidInput(ErrIncompleteRoll))
	assert.False(t, IsInvalidInput(ErrStorage))
	assert.True(t, IsNotFound(ErrClassNotFound))
	assert.True(t, IsNotFound(ErrRecordNotFound))
	assert.False(t, IsNotFound(ErrInvalidDate))
}
