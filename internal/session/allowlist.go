package session

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Credential is one allowed user. Only the bcrypt hash of the password is kept.
type Credential struct {
	Username     string
	PasswordHash []byte
}

// AllowList is the fixed set of users the mock gate accepts.
// Usernames compare case-insensitively; passwords are case-sensitive.
type AllowList []Credential

// NewAllowList hashes each username/password pair with the given bcrypt cost.
func NewAllowList(cost int, pairs ...[2]string) (AllowList, error) {
	list := make(AllowList, 0, len(pairs))
	for _, p := range pairs {
		hash, err := bcrypt.GenerateFromPassword([]byte(p[1]), cost)
		if err != nil {
			return nil, fmt.Errorf("session: hashing password for %q: %w", p[0], err)
		}
		list = append(list, Credential{Username: p[0], PasswordHash: hash})
	}
	return list, nil
}

// DefaultCredentials are the built-in mock users.
var DefaultCredentials = [][2]string{
	{"admin", "1234"},
	{"user", "pass"},
}

var defaultAllowList = sync.OnceValue(func() AllowList {
	list, err := NewAllowList(bcrypt.DefaultCost, DefaultCredentials...)
	if err != nil {
		panic(err)
	}
	return list
})

// DefaultAllowList returns the allow-list built from DefaultCredentials.
// Hashing happens once per process.
func DefaultAllowList() AllowList {
	return defaultAllowList()
}

// Verify reports whether username/password matches an entry.
func (l AllowList) Verify(username, password string) bool {
	for _, c := range l {
		if !strings.EqualFold(c.Username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) == nil {
			return true
		}
	}
	return false
}

// With returns a copy of l with extra appended.
func (l AllowList) With(extra ...Credential) AllowList {
	out := make(AllowList, 0, len(l)+len(extra))
	out = append(out, l...)
	return append(out, extra...)
}
