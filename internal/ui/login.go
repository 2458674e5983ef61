package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/output"
	"github.com/smileynet/rolodex/internal/session"
)

const (
	loginUsername = iota
	loginPassword
)

// loginState holds the credential inputs and the outcome of the last attempt.
type loginState struct {
	inputs  [2]textinput.Model
	focus   int
	err     string
	pending bool
}

// submitLoginMsg is emitted when the user asks to sign in.
type submitLoginMsg struct{}

func newLoginState() loginState {
	user := textinput.New()
	user.Placeholder = "admin"
	user.Prompt = "> "
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "> "
	pass.CharLimit = 64
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return loginState{inputs: [2]textinput.Model{user, pass}}
}

// submitLogin runs the gate off the UI goroutine; the configured delay
// happens inside Submit.
func submitLogin(auth Authenticator, username string) tea.Cmd {
	return func() tea.Msg {
		state, err := auth.Submit()
		return LoginResultMsg{Username: username, State: state, Err: err}
	}
}

// Update processes key input for the login screen. Draft edits are pushed
// to auth as they happen.
func (ls loginState) Update(msg tea.KeyMsg, auth Authenticator) (loginState, tea.Cmd) {
	if ls.pending {
		return ls, nil
	}

	switch msg.String() {
	case "tab", "down":
		return ls.setFocus((ls.focus + 1) % len(ls.inputs)), nil
	case "shift+tab", "up":
		return ls.setFocus((ls.focus + len(ls.inputs) - 1) % len(ls.inputs)), nil
	case "enter":
		if ls.focus == loginUsername {
			return ls.setFocus(loginPassword), nil
		}
		return ls, func() tea.Msg { return submitLoginMsg{} }
	}

	before := ls.inputs[ls.focus].Value()
	var cmd tea.Cmd
	ls.inputs[ls.focus], cmd = ls.inputs[ls.focus].Update(msg)
	if after := ls.inputs[ls.focus].Value(); after != before {
		ls.err = ""
		if ls.focus == loginUsername {
			auth.SetUsername(after)
		} else {
			auth.SetPassword(after)
		}
	}
	return ls, cmd
}

func (ls loginState) setFocus(i int) loginState {
	for j := range ls.inputs {
		if j == i {
			ls.inputs[j].Focus()
		} else {
			ls.inputs[j].Blur()
		}
	}
	ls.focus = i
	return ls
}

// username returns the trimmed username draft.
func (ls loginState) username() string {
	return strings.TrimSpace(ls.inputs[loginUsername].Value())
}

// applyResult records a finished attempt. Only authentication failures are
// shown; a superseded or cancelled attempt leaves the form untouched.
func (ls loginState) applyResult(msg LoginResultMsg) loginState {
	ls.pending = false
	var ae *session.AuthError
	switch {
	case msg.State == session.Authenticated:
		ls.err = ""
	case errors.As(msg.Err, &ae):
		ls.err = output.Capitalize(ae.Reason)
	}
	return ls
}

// reset clears both inputs and returns focus to the username.
func (ls loginState) reset() loginState {
	for i := range ls.inputs {
		ls.inputs[i].Reset()
	}
	ls.err = ""
	ls.pending = false
	return ls.setFocus(loginUsername)
}

// View renders the login form. spinnerView is shown while an attempt is pending.
func (ls loginState) View(spinnerView string) string {
	var b strings.Builder
	b.WriteString(titleText.Render("Rolodex"))
	b.WriteString("\n\n")
	b.WriteString(labelText.Render("Username"))
	b.WriteString("\n")
	b.WriteString(ls.inputs[loginUsername].View())
	b.WriteString("\n\n")
	b.WriteString(labelText.Render("Password"))
	b.WriteString("\n")
	b.WriteString(ls.inputs[loginPassword].View())
	b.WriteString("\n\n")

	switch {
	case ls.pending:
		fmt.Fprintf(&b, "%s Signing in...", spinnerView)
	case ls.err != "":
		b.WriteString(errorText.Render(ls.err))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedText.Render("Test credentials: admin / 1234"))
	return b.String()
}
