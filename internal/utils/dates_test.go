package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-03-09",
		"2024-03-09T17:30:00Z",
		"2024-03-09T17:30:00",
		"2024-03-09 17:30:00",
		"2024-03-09T17:30:00.123456",
		"2024-03-09T17:30",
		"2024-03-09 17:30",
		"20240309",
	} {
		got := ParseDate(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), in)
	}

	for _, in := range []string{"", "not-a-date", "2024-13-01", "09/03/2024", "20241301", "2024-03-09T17"} {
		assert.Nil(t, ParseDate(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Nil(t, FormatDate(nil))

	d := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-01-01", *FormatDate(&d))
}
