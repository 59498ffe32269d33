// Package credid mints public, human-shareable credential identifiers.
//
// Format: {TRACK}-{MILLIS_BASE36}-{RANDOM6}, uppercased. The charset is
// restricted to alphanumerics, hyphens, and underscores so the value is safe
// in file names and URLs. Uniqueness is ultimately the store's constraint;
// the millisecond timestamp plus a 36^6 random suffix makes collisions
// negligible in practice.
package credid

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	randomLen     = 6
	base36Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generate derives a fresh credential ID for the given track.
func Generate(trackID string, now time.Time) string {
	var b strings.Builder
	b.WriteString(sanitizeTrack(trackID))
	b.WriteByte('-')
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	b.WriteByte('-')
	b.WriteString(randomSuffix())
	return b.String()
}

// sanitizeTrack uppercases the track prefix and strips anything outside the
// identifier charset so a hostile track ID cannot smuggle path separators
// into artifact file names.
func sanitizeTrack(trackID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(trackID) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "CERT"
	}
	return b.String()
}

func randomSuffix() string {
	max := big.NewInt(int64(len(base36Charset)))
	buf := make([]byte, randomLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// treat that as unrecoverable.
			panic("credid: random source unavailable: " + err.Error())
		}
		buf[i] = base36Charset[n.Int64()]
	}
	return string(buf)
}
