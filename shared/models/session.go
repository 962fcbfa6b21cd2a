package models

import "time"

// PrincipalProfile is the resolved identity of an authenticated principal,
// cached in Redis against the token hash so role routing does not hit
// Cognito or Postgres on every request.
type PrincipalProfile struct {
	TenantID       string     `json:"tenant_id"`
	Email          string     `json:"email"`
	Role           TenantRole `json:"role"`
	ParentTenantID string     `json:"parent_tenant_id,omitempty"`
}

// TokenSession is one login session stored in Redis, keyed by a hash of
// the access token. The token itself is never stored.
type TokenSession struct {
	Profile    PrincipalProfile `json:"profile"`
	SessionID  string           `json:"session_id"`
	CreatedAt  time.Time        `json:"created_at"`
	LastUsedAt time.Time        `json:"last_used_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

// IsExpired reports whether the session's TTL has lapsed.
func (ts *TokenSession) IsExpired() bool {
	return time.Now().After(ts.ExpiresAt)
}

// UpdateLastUsed stamps the session with the current time.
func (ts *TokenSession) UpdateLastUsed() {
	ts.LastUsedAt = time.Now()
}
