package types

import "time"

// User represents an account in the system.
// It contains identity, permission flags, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password,
	// or an unusable marker when the account was created without one.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// Email is the user's email address. It may be empty.
	Email string `json:"email" db:"email"`

	// IsActive marks accounts allowed to authenticate.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsStaff marks accounts that belong to the operating team.
	IsStaff bool `json:"is_staff" db:"is_staff"`

	// IsSuperuser grants unrestricted access to every account.
	IsSuperuser bool `json:"is_superuser" db:"is_superuser"`

	// DateJoined is the timestamp when the account was created.
	DateJoined time.Time `json:"date_joined" db:"date_joined"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"-" db:"last_login"`
}

// DisplayName returns the full name when any part of it is set, and the
// username otherwise.
func (u User) DisplayName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	default:
		return u.FirstName + " " + u.LastName
	}
}

func (u User) String() string {
	return u.DisplayName()
}
