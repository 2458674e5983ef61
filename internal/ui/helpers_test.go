package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/session"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				result := c()
				if _, isTick := result.(spinner.TickMsg); !isTick {
					msgs = append(msgs, result)
				}
			}
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func collectKeys(bindings []key.Binding) []string {
	var keys []string
	for _, b := range bindings {
		keys = append(keys, b.Keys()...)
	}
	return keys
}

func containsKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}

func sampleContacts() []contact.Contact {
	return []contact.Contact{
		{FirstName: "Juan", LastName: "Perez", Phone: "+54 11 1234-5678", Email: "juan.perez@email.com", Company: "Tech Solutions", Favorite: true},
		{FirstName: "Maria", LastName: "Garcia", Phone: "+54 11 8765-4321", Email: "maria.garcia@email.com", Company: "Design Studio"},
		{FirstName: "Carlos", LastName: "Lopez", Phone: "+54 11 5555-6666", Email: "carlos.lopez@email.com", Company: "Marketing Pro"},
		{FirstName: "Ana", LastName: "Martinez", Phone: "+54 11 9999-0000", Email: "ana.martinez@email.com", Company: "Consulting Group", Favorite: true},
	}
}

// fixture bundles a model with the real store and gate behind it.
type fixture struct {
	store *contact.Store
	gate  *session.Gate
	m     Model
}

// newFixture returns a sized model on the login screen whose list already
// holds the seeded snapshot. The gate never sleeps.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	n := 0
	store := contact.NewStore(contact.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}))
	store.Seed(sampleContacts())

	allow, err := session.NewAllowList(bcrypt.MinCost, session.DefaultCredentials...)
	if err != nil {
		t.Fatalf("NewAllowList() error = %v", err)
	}
	gate := session.NewGate(session.WithAllowList(allow), session.WithSleep(func(time.Duration) {}))

	m := NewModel(Options{Store: store, Auth: gate, SnackbarDuration: time.Millisecond})
	t.Cleanup(m.Close)

	f := &fixture{store: store, gate: gate, m: m}
	f.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	f.sync(t)
	return f
}

// loggedIn returns a fixture already on the list screen.
func loggedIn(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.m.screen = ScreenList
	f.m.user = "admin"
	return f
}

// send applies msg and returns the resulting command.
func (f *fixture) send(msg tea.Msg) tea.Cmd {
	updated, cmd := f.m.Update(msg)
	f.m = updated.(Model)
	return cmd
}

// press sends a special key.
func (f *fixture) press(k tea.KeyType) tea.Cmd {
	return f.send(tea.KeyMsg{Type: k})
}

// typeText sends s as a single rune key message.
func (f *fixture) typeText(s string) tea.Cmd {
	return f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// run executes cmd and feeds the resulting messages back into the model,
// following returned commands a few levels deep. Snackbar expiry is dropped
// so the message stays on screen for assertions. Only use it for commands
// that do not wait on the subscription or the cursor blink.
func (f *fixture) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for depth := 0; len(queue) > 0 && depth < 5; depth++ {
		var next []tea.Cmd
		for _, c := range queue {
			for _, msg := range execBatch(t, c) {
				switch msg.(type) {
				case nil, snackbarExpiredMsg:
					continue
				}
				next = append(next, f.send(msg))
			}
		}
		queue = next
	}
}

// sync applies the next store snapshot from the subscription.
func (f *fixture) sync(t *testing.T) {
	t.Helper()
	select {
	case cs, ok := <-f.m.updates:
		if !ok {
			t.Fatal("subscription closed")
		}
		f.send(ContactsMsg{Contacts: cs})
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a store snapshot")
	}
}

func (f *fixture) visibleNames() []string {
	out := make([]string, len(f.m.list.visible))
	for i, c := range f.m.list.visible {
		out[i] = c.FullName()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
