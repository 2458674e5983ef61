package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SnackbarDuration is how long a snackbar stays visible.
const SnackbarDuration = 3 * time.Second

// snackbar is a transient status line shown above the help bar.
type snackbar struct {
	text    string
	kind    SnackbarKind
	seq     int
	visible bool
}

func showSnackbar(text string, kind SnackbarKind) tea.Cmd {
	return func() tea.Msg { return ShowSnackbarMsg{Text: text, Kind: kind} }
}

// show displays msg and returns the timer that hides it.
func (s snackbar) show(msg ShowSnackbarMsg, d time.Duration) (snackbar, tea.Cmd) {
	s.seq++
	s.text = msg.Text
	s.kind = msg.Kind
	s.visible = true
	seq := s.seq
	return s, tea.Tick(d, func(time.Time) tea.Msg { return snackbarExpiredMsg{seq: seq} })
}

// expire hides the snackbar if msg belongs to the message on screen.
func (s snackbar) expire(msg snackbarExpiredMsg) snackbar {
	if msg.seq == s.seq {
		s.visible = false
	}
	return s
}

func (s snackbar) View() string {
	if !s.visible {
		return ""
	}
	return SnackbarStyle(s.kind).Render(s.text)
}
