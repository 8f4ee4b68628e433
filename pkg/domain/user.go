package domain

import "strings"

// User is the authenticated account as returned by /users/me.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the upper-cased first letters of first and last name,
// or "?" when both are empty.
func (u User) Initials() string {
	var b strings.Builder
	for _, s := range []string{u.FirstName, u.LastName} {
		for _, r := range strings.TrimSpace(s) {
			b.WriteRune(r)
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return strings.ToUpper(b.String())
}

// UpdateUserRequest is the payload of PATCH /users/me. Email is not editable.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
