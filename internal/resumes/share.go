package resumes

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ShareExpiry is the client-facing expiry choice for a share link.
type ShareExpiry string

const (
	ShareExpiryWeek    ShareExpiry = "week"
	ShareExpiryMonth   ShareExpiry = "month"
	ShareExpiryQuarter ShareExpiry = "quarter"
	ShareExpiryNever   ShareExpiry = "never"
)

// ParseShareExpiry validates a raw expiry choice, defaulting to month.
func ParseShareExpiry(raw string) (ShareExpiry, error) {
	switch ShareExpiry(raw) {
	case ShareExpiryWeek, ShareExpiryMonth, ShareExpiryQuarter, ShareExpiryNever:
		return ShareExpiry(raw), nil
	case "":
		return ShareExpiryMonth, nil
	default:
		return "", fmt.Errorf("invalid expiresIn %q", raw)
	}
}

// ExpiresAt resolves the choice to an absolute deadline; nil means never.
func (e ShareExpiry) ExpiresAt(now time.Time) *time.Time {
	var d time.Duration
	switch e {
	case ShareExpiryWeek:
		d = 7 * 24 * time.Hour
	case ShareExpiryMonth:
		d = 30 * 24 * time.Hour
	case ShareExpiryQuarter:
		d = 90 * 24 * time.Hour
	default:
		return nil
	}
	at := now.UTC().Add(d)
	return &at
}

// newShareToken mints a 32-char random hex token.
func newShareToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// shareOpen reports whether a resume is publicly viewable at the given time.
func shareOpen(r Resume, now time.Time) bool {
	if r.ShareToken == "" || !r.IsSharePublic {
		return false
	}
	if r.ShareExpiresAt != nil && r.ShareExpiresAt.Before(now) {
		return false
	}
	return true
}
