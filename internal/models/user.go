package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleOwner UserRole = "owner"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleOwner, UserRoleAdmin:
		return true
	}
	return false
}

// CanRegister reports whether the role has a public sign-up flow.
func (r UserRole) CanRegister() bool {
	return r == UserRoleUser || r == UserRoleOwner
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// UserRecord is the role-tagged identity returned by the backend. Plain users
// and admins carry Name/Email; owners carry BusinessName and Approved.
type UserRecord struct {
	ID           string     `json:"id"`
	Role         UserRole   `json:"role"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	BusinessName string     `json:"businessName,omitempty"`
	Approved     *bool      `json:"approved,omitempty"`
	Status       UserStatus `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// PendingApproval is true only for owners explicitly flagged as not approved.
// A record without the flag is not considered pending.
func (u *UserRecord) PendingApproval() bool {
	return u != nil && u.Role == UserRoleOwner && u.Approved != nil && !*u.Approved
}

func (u *UserRecord) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.BusinessName != "" {
		return u.BusinessName
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
