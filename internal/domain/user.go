package domain

import (
	"strings"
	"time"
)

// User represents an account issued by the identity provider. Rows are
// created lazily the first time the account reaches the API and are never
// deleted here.
type User struct {
	ID        string
	Email     string
	Name      string
	Avatar    *string
	CreatedAt time.Time
}

// NewUser builds the row for a first-time visitor. The display name falls
// back to the email when the provider has no full name on file.
func NewUser(id, email, fullName, avatarURL string) User {
	u := User{ID: id, Email: email, Name: strings.TrimSpace(fullName)}
	if u.Name == "" {
		u.Name = email
	}
	if avatar := strings.TrimSpace(avatarURL); avatar != "" {
		u.Avatar = &avatar
	}
	return u
}

// Profile is a user together with its contribution history, newest first.
type Profile struct {
	User
	Contributions []Contribution
}
