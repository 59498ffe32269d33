package credid

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credIDPattern = regexp.MustCompile(`^[A-Z0-9_]+-[0-9A-Z]+-[0-9A-Z]{6}$`)

func TestGenerateFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id := Generate("eng_track", now)
	require.Regexp(t, credIDPattern, id)
	assert.True(t, regexp.MustCompile(`^ENG_TRACK-`).MatchString(id), "track prefix should be uppercased: %s", id)
}

func TestGenerateSanitizesTrack(t *testing.T) {
	now := time.Now()

	id := Generate("../evil/track", now)
	require.Regexp(t, credIDPattern, id)
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, ".")

	// A track with no usable characters still yields a valid prefix.
	id = Generate("!!!", now)
	require.Regexp(t, `^CERT-`, id)
}

func TestGenerateUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := Generate("eng_track", now)
		require.False(t, seen[id], "duplicate credential ID generated: %s", id)
		seen[id] = true
	}
}
