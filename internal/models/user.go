package models

import "time"

// Name visibility preferences a user can set on their profile.
const (
	VisibilityFull      = "full"
	VisibilityFirstOnly = "first_only"
	VisibilityInitials  = "initials"
	VisibilityAnonymous = "anonymous"
)

// AnonymousName is shown when a sender hides their identity.
const AnonymousName = "Anonymous User"

// User is an account in the community.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser" json:"is_superuser"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RealName returns the user's full name, falling back to the username.
func (u User) RealName() string {
	name := u.FirstName + " " + u.LastName
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.FirstName == "" || u.LastName == "" {
		return u.FirstName + u.LastName
	}
	return name
}

// Profile carries the messaging-relevant profile settings.
type Profile struct {
	UserID         int       `db:"user_id" json:"user_id"`
	Bio            string    `db:"bio" json:"bio"`
	Location       string    `db:"location" json:"location"`
	NameVisibility string    `db:"name_visibility" json:"name_visibility"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName resolves the name shown to a counterpart who has NOT been
// shown the real identity, according to the visibility preference.
func (p Profile) DisplayName(u User) string {
	switch p.NameVisibility {
	case VisibilityFull:
		return u.RealName()
	case VisibilityFirstOnly:
		if u.FirstName != "" {
			return u.FirstName
		}
		return u.Username
	case VisibilityInitials:
		initials := firstRune(u.FirstName) + firstRune(u.LastName)
		if initials == "" {
			initials = firstRune(u.Username)
		}
		if initials == "" {
			return AnonymousName
		}
		return initials
	default:
		return AnonymousName
	}
}

// firstRune returns the first character of s, not the first byte, so
// names like "Åsa" keep a valid initial.
func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// VisibleName picks the name a viewer sees for a message sender. A
// revelation overrides the visibility preference; anonymous senders stay
// hidden otherwise. Recomputed per render, never cached across requests.
func VisibleName(sender User, profile Profile, revealed bool) string {
	if revealed {
		return sender.RealName()
	}
	return profile.DisplayName(sender)
}
