// Package ui implements the rolodex terminal UI: a login screen gating a
// two-pane contact browser with search, favorites and a new-contact form.
package ui

import (
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/session"
)

// Screen is the top-level view the model is showing.
type Screen int

const (
	ScreenLogin Screen = iota // Credentials form.
	ScreenList                // Contact list with detail pane.
	ScreenForm                // New-contact form.
)

// Mode is the interaction mode inside the list screen.
type Mode int

const (
	ModeBrowse  Mode = iota // Cursor moves over the list.
	ModeSearch              // Keystrokes go to the search box.
	ModeConfirm             // Waiting for delete confirmation.
)

// Tab selects which contacts the list pane shows.
type Tab int

const (
	TabAll       Tab = iota // Every contact matching the query.
	TabFavorites            // Favorites matching the query.
)

// --- Consumer-side interfaces ---

// ContactStore is the subset of contact.Store the UI needs.
type ContactStore interface {
	Add(c contact.Contact) string
	Delete(id string) bool
	ToggleFavorite(id string) bool
	Suggest(query string) (contact.Contact, bool)
	Subscribe() (<-chan []contact.Contact, func())
}

// Authenticator is the subset of session.Gate the UI needs.
type Authenticator interface {
	SetUsername(v string)
	SetPassword(v string)
	Submit() (session.State, error)
	Logout()
}

// --- tea.Msg types ---

// ContactsMsg carries a store snapshot delivered through the subscription.
type ContactsMsg struct {
	Contacts []contact.Contact
}

// LoginResultMsg carries the outcome of an Authenticator.Submit call.
type LoginResultMsg struct {
	Username string
	State    session.State
	Err      error
}

// SnackbarKind picks the snackbar color.
type SnackbarKind int

const (
	SnackbarSuccess SnackbarKind = iota
	SnackbarError
)

// ShowSnackbarMsg asks the model to display a transient message.
type ShowSnackbarMsg struct {
	Text string
	Kind SnackbarKind
}

// snackbarExpiredMsg hides the snackbar with the matching sequence number.
// Older timers are ignored so a new message gets its full display time.
type snackbarExpiredMsg struct {
	seq int
}
