package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certo/pkg/domain-errors"
)

func TestNewCertificateValidation(t *testing.T) {
	now := time.Now()

	t.Run("valid certificate", func(t *testing.T) {
		cert, err := NewCertificate("ENG_TRACK-ABC-XYZ123", "u1", "eng_track", "AI Engineering", "Jane Doe", 92, now)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, cert.Status)
		assert.Equal(t, now, cert.IssuedAt)
		assert.NotEqual(t, cert.ID.String(), "00000000-0000-0000-0000-000000000000")
	})

	t.Run("rejects empty fields and bad scores", func(t *testing.T) {
		cases := []struct {
			name    string
			credID  string
			userID  string
			trackID string
			title   string
			score   int
		}{
			{"empty credential ID", "", "u1", "t1", "Title", 100},
			{"empty user ID", "C-1", "", "t1", "Title", 100},
			{"empty track ID", "C-1", "u1", "", "Title", 100},
			{"empty title", "C-1", "u1", "t1", "", 100},
			{"negative score", "C-1", "u1", "t1", "Title", -1},
			{"score over 100", "C-1", "u1", "t1", "Title", 101},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewCertificate(tc.credID, tc.userID, tc.trackID, tc.title, "Jane", tc.score, now)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			})
		}
	})
}

func TestRevocationTransitions(t *testing.T) {
	now := time.Now()
	cert, err := NewCertificate("C-1", "u1", "t1", "Title", "Jane", 100, now)
	require.NoError(t, err)

	require.NoError(t, cert.CanRevoke())
	revokedAt := now.Add(time.Hour)
	cert.ApplyRevocation(revokedAt, "policy violation")

	assert.Equal(t, StatusRevoked, cert.Status)
	assert.Equal(t, revokedAt, *cert.RevokedAt)
	assert.Equal(t, "policy violation", cert.RevokedReason)

	// Terminal states refuse further transitions.
	require.Error(t, cert.CanRevoke())
}

func TestSupersessionKeepsDistinctStatus(t *testing.T) {
	now := time.Now()
	cert, err := NewCertificate("C-1", "u1", "t1", "Title", "Jane", 100, now)
	require.NoError(t, err)

	cert.ApplySupersession(now, "reissued")
	assert.Equal(t, StatusReissued, cert.Status)
	assert.True(t, cert.Status.Terminal())
	require.Error(t, cert.CanRevoke())
}
