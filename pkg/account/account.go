// Package account holds the concrete user and token entities wired through
// the generic authentication core. Any entity pair satisfying the relation
// contract works; these are the shapes the bundled stores persist.
package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/pkg/relation"
)

// User is the principal a request is attributed to.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Token is an opaque bearer credential owned by exactly one user.
// UserID is never empty for a well-formed token.
type Token struct {
	ID        string
	Value     string
	UserID    string
	CreatedAt time.Time
}

// NewUser builds a user with a fresh ID.
func NewUser(name string) User {
	return User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// NewToken builds a token record owned by user, carrying the opaque value
// clients will present. The value itself comes from the caller; this package
// does not mint credentials.
func NewToken(user User, value string) Token {
	return Token{
		ID:        uuid.NewString(),
		Value:     value,
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
}

// Schema binds the account entities to the relation resolver.
func Schema() relation.Schema[User, Token, string] {
	return relation.Schema[User, Token, string]{
		UserID:  func(u User) string { return u.ID },
		OwnerID: func(t Token) string { return t.UserID },
	}
}
