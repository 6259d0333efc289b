package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalAddress(t *testing.T) {
	assert.Equal(t, "+4917012345678", CanonicalAddress("whatsapp:+4917012345678"))
	assert.Equal(t, "+4917012345678", CanonicalAddress("+4917012345678"))
	assert.Equal(t, "+4917012345678", CanonicalAddress("  whatsapp:+4917012345678 "))
	assert.Equal(t, "", CanonicalAddress(""))
}

func TestParseTimeOfDay(t *testing.T) {
	minutes, err := ParseTimeOfDay("19:30")
	require.NoError(t, err)
	assert.Equal(t, 19*60+30, minutes)

	minutes, err = ParseTimeOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	_, err = ParseTimeOfDay("7pm")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2026-09-15")
	assert.NoError(t, err)
	_, err = ParseDate("15.09.2026")
	assert.Error(t, err)
	_, err = ParseDate("2026-13-01")
	assert.Error(t, err)
}

func TestCombineDateTime(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	at, err := CombineDateTime("2026-09-15", "19:30", berlin)
	require.NoError(t, err)
	assert.Equal(t, 19, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, berlin, at.Location())

	midnight, err := CombineDateTime("2026-09-15", "", berlin)
	require.NoError(t, err)
	assert.Equal(t, 0, midnight.Hour())
}

func TestStringListMergeSet(t *testing.T) {
	list := StringList{"window seat"}
	merged := list.MergeSet([]string{"window seat", "quiet corner", ""})
	assert.Equal(t, StringList{"window seat", "quiet corner"}, merged)
	assert.True(t, merged.Contains("quiet corner"))
	assert.False(t, merged.Contains(""))
}
