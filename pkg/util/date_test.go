package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("120522")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, time.May, 12, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateKeyAcceptsYearsAfter2025(t *testing.T) {
	got, err := ParseDateKey("010130")
	require.NoError(t, err)
	assert.Equal(t, 2030, got.Year())
}

func TestParseDateKeyRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "12052", "1205222", "310222", "001022", "121322", "12-05-", "abcdef"} {
		_, err := ParseDateKey(s)
		assert.Error(t, err, s)
	}
}

func TestDateFormats(t *testing.T) {
	d := time.Date(2022, time.May, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "020522", DateKey(d))
	assert.Equal(t, "02/05/2022", DisplayDate(d))
	assert.Equal(t, time.Date(2022, time.May, 2, 0, 0, 0, 0, time.UTC), TruncateDay(d))
}

func TestSameOrBefore(t *testing.T) {
	day := time.Date(2022, time.May, 12, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameOrBefore(day.Add(20*time.Hour), day))
	assert.True(t, SameOrBefore(day.AddDate(0, 0, -1), day))
	assert.False(t, SameOrBefore(day.AddDate(0, 0, 1), day))
}
