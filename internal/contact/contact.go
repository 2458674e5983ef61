// Package contact holds the contact model and the in-memory store the
// list and form screens read from and write to.
package contact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Contact is a stored person record. ID is assigned by Store.Add and never
// changes afterwards.
type Contact struct {
	ID        string `yaml:"-"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Phone     string `yaml:"phone"`
	Email     string `yaml:"email,omitempty"`
	Company   string `yaml:"company,omitempty"`
	Address   string `yaml:"address,omitempty"`
	AvatarURL string `yaml:"avatar_url,omitempty"`
	Favorite  bool   `yaml:"favorite,omitempty"`
}

// FullName returns "first last".
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Initials returns the uppercased first letter of the first and last names.
// An empty name contributes nothing.
func (c Contact) Initials() string {
	return initial(c.FirstName) + initial(c.LastName)
}

func initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// matches reports whether q occurs, ignoring case, in the first name, last
// name or phone number. q must already be lowercased.
func (c Contact) matches(q string) bool {
	return strings.Contains(strings.ToLower(c.FirstName), q) ||
		strings.Contains(strings.ToLower(c.LastName), q) ||
		strings.Contains(strings.ToLower(c.Phone), q)
}
