package models

// Status is the lifecycle state of a certificate record.
//
// Transitions:
//   - active → revoked (revoke)
//   - active → reissued (reissue marks the predecessor)
//
// revoked and reissued are terminal. A reissue creates a brand-new active
// record pointing back at its predecessor via ReissuedFrom.
type Status string

const (
	StatusActive   Status = "active"
	StatusRevoked  Status = "revoked"
	StatusReissued Status = "reissued"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusRevoked, StatusReissued:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusRevoked || s == StatusReissued
}
