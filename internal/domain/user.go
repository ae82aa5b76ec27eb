package domain

import "time"

// User represents an account holder. Email is stored fully lowercased and is
// unique across the system. PasswordHash is a bcrypt hash, never the plaintext.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Token is an opaque bearer credential bound 1:1 to a user. A nil ExpiresAt
// means the token never expires; deleting the row invalidates it.
type Token struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
