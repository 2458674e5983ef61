// Package session implements the mock login gate in front of the contact
// list: a small state machine with a fixed credential allow-list and a
// simulated network round trip.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// State is the authentication state of the current session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Failure reasons carried by AuthError.
const (
	ReasonUsernameRequired   = "username required"
	ReasonPasswordRequired   = "password required"
	ReasonPasswordTooShort   = "password too short"
	ReasonInvalidCredentials = "invalid credentials"
)

// MinPasswordLength is the shortest password checked against the allow-list.
const MinPasswordLength = 4

// DefaultDelay is the simulated latency of a login round trip.
const DefaultDelay = 500 * time.Millisecond

// AuthError is a user-facing login failure.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "session: " + e.Reason
}

var (
	// ErrLoginInProgress is returned when AttemptLogin is called while an
	// earlier attempt is still waiting on its delay.
	ErrLoginInProgress = errors.New("session: login already in progress")
	// ErrLoggedOut is returned by an attempt whose result was discarded
	// because Logout ran while it was pending.
	ErrLoggedOut = errors.New("session: logged out during login")
)

// Session is an observable snapshot of the gate.
type Session struct {
	Username string
	Password string
	State    State
	Error    string
}

// Gate guards access to the contact list. It is safe for concurrent use,
// but only one login attempt may be pending at a time.
type Gate struct {
	mu       sync.Mutex
	sess     Session
	inFlight bool
	gen      uint64
	subs     map[int]func(Session)
	nextSub  int

	allow AllowList
	delay time.Duration
	sleep func(time.Duration)
	log   zerolog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithAllowList replaces the default allow-list.
func WithAllowList(l AllowList) Option {
	return func(g *Gate) {
		g.allow = l
	}
}

// WithDelay sets the simulated latency. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(g *Gate) {
		g.delay = d
	}
}

// WithSleep replaces time.Sleep. Intended for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(g *Gate) {
		if fn != nil {
			g.sleep = fn
		}
	}
}

// WithLogger sets the logger for login outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// NewGate returns an unauthenticated Gate.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		subs:  make(map[int]func(Session)),
		delay: DefaultDelay,
		sleep: time.Sleep,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.allow == nil {
		g.allow = DefaultAllowList()
	}
	return g
}

// Snapshot returns the current session.
func (g *Gate) Snapshot() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess
}

// State returns the current state.
func (g *Gate) State() State {
	return g.Snapshot().State
}

// Subscribe registers fn to be called with every new session snapshot.
// fn runs on the goroutine that changed the state and must not block.
func (g *Gate) Subscribe(fn func(Session)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// SetUsername edits the username draft and clears any shown error.
func (g *Gate) SetUsername(v string) {
	g.edit(func(s *Session) { s.Username = v })
}

// SetPassword edits the password draft and clears any shown error.
func (g *Gate) SetPassword(v string) {
	g.edit(func(s *Session) { s.Password = v })
}

// ClearError dismisses the current error message.
func (g *Gate) ClearError() {
	g.edit(func(*Session) {})
}

func (g *Gate) edit(fn func(*Session)) {
	g.mu.Lock()
	fn(&g.sess)
	g.sess.Error = ""
	if g.sess.State == Failed {
		g.sess.State = Unauthenticated
	}
	snap, subs := g.sess, g.subscribersLocked()
	g.mu.Unlock()

	notify(subs, snap)
}

// Submit attempts a login with the current drafts.
func (g *Gate) Submit() (State, error) {
	s := g.Snapshot()
	return g.AttemptLogin(s.Username, s.Password)
}

// AttemptLogin validates the input, waits the simulated delay and checks
// the allow-list. Input errors fail immediately without the delay.
// It blocks for the duration of the delay, which cannot be cancelled.
func (g *Gate) AttemptLogin(username, password string) (State, error) {
	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		return Authenticating, ErrLoginInProgress
	}

	g.sess.Username = username
	g.sess.Password = password

	if reason := precheck(username, password); reason != "" {
		g.sess.State = Failed
		g.sess.Error = reason
		snap, subs := g.sess, g.subscribersLocked()
		g.mu.Unlock()

		g.log.Debug().Str("reason", reason).Msg("login rejected")
		notify(subs, snap)
		return Failed, &AuthError{Reason: reason}
	}

	g.inFlight = true
	gen := g.gen
	g.sess.State = Authenticating
	g.sess.Error = ""
	snap, subs := g.sess, g.subscribersLocked()
	g.mu.Unlock()
	notify(subs, snap)

	g.sleep(g.delay)
	ok := g.allow.Verify(username, password)

	g.mu.Lock()
	g.inFlight = false
	if gen != g.gen {
		g.mu.Unlock()
		g.log.Debug().Msg("login result discarded after logout")
		return Unauthenticated, ErrLoggedOut
	}

	var err error
	if ok {
		g.sess.State = Authenticated
		g.sess.Error = ""
	} else {
		g.sess.State = Failed
		g.sess.Error = ReasonInvalidCredentials
		err = &AuthError{Reason: ReasonInvalidCredentials}
	}
	state := g.sess.State
	snap, subs = g.sess, g.subscribersLocked()
	g.mu.Unlock()

	g.log.Info().Str("username", username).Stringer("state", state).Msg("login attempt finished")
	notify(subs, snap)
	return state, err
}

// Logout resets the session to Unauthenticated and clears the drafts and
// error, whatever the current state. A pending attempt finishes with
// ErrLoggedOut and leaves the session untouched.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.gen++
	g.sess = Session{}
	snap, subs := g.sess, g.subscribersLocked()
	g.mu.Unlock()

	g.log.Info().Msg("logged out")
	notify(subs, snap)
}

// precheck returns the failure reason for malformed input, or "".
func precheck(username, password string) string {
	switch {
	case strings.TrimSpace(username) == "":
		return ReasonUsernameRequired
	case strings.TrimSpace(password) == "":
		return ReasonPasswordRequired
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return ReasonPasswordTooShort
	}
	return ""
}

func (g *Gate) subscribersLocked() []func(Session) {
	out := make([]func(Session), 0, len(g.subs))
	for i := 0; i < g.nextSub; i++ {
		if fn, ok := g.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(Session), s Session) {
	for _, fn := range subs {
		fn(s)
	}
}
