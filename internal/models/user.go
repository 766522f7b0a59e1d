package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Toggled returns the opposite role. Unknown roles toggle to admin.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

type User struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Created      time.Time `json:"created_at"`
}

// UserSummary is the admin listing view of a user.
type UserSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

type Session struct {
	SessionID     string    `json:"session_id"`
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	Role          Role      `json:"role,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	JustSignedUp  bool      `json:"just_signed_up,omitempty"`
	Asset         string    `json:"asset,omitempty"`
	PageHits      int       `json:"page_hits"`
}
