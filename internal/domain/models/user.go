package models

import "strings"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the record the console lists and edits.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Status   string `json:"status"`
}

// Active reports whether the user is rendered with the "Activo" tag.
func (u User) Active() bool {
	return u.Status == StatusActive
}

// UserInput is the create/edit form payload.
type UserInput struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Lastname string `json:"lastname" form:"lastname"`
	Status   string `json:"status" form:"status"`
	Password string `json:"password,omitempty" form:"password"` // optional on edit
}

// Normalize trims every field and lowercases status.
func (in UserInput) Normalize() UserInput {
	return UserInput{
		Username: strings.TrimSpace(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Lastname: strings.TrimSpace(in.Lastname),
		Status:   strings.ToLower(strings.TrimSpace(in.Status)),
		Password: in.Password,
	}
}

// UserPage is the read endpoint response: one slice of users plus the
// server-reported total across all pages.
type UserPage struct {
	Data       []User `json:"data"`
	TotalUsers int    `json:"totalUsers"`
}

// ValidStatus reports whether s is a known user status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}
