package contact

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the authoritative, insertion-ordered collection of contacts.
// It is safe for concurrent use. Every effective mutation is pushed to
// subscribers as a full snapshot taken under the same lock.
type Store struct {
	mu       sync.RWMutex
	contacts []Contact
	subs     map[int]chan []Contact
	nextSub  int
	newID    func() string
	log      zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithIDFunc replaces the uuid generator. Intended for tests.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subs:  make(map[int]chan []Contact),
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add assigns a fresh ID to c, appends it and returns the ID.
// Any ID already set on c is ignored. Duplicates are allowed.
func (s *Store) Add(c Contact) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.newID()
	s.contacts = append(s.contacts, c)
	s.log.Debug().Str("id", c.ID).Str("name", c.FullName()).Msg("contact added")
	s.notifyLocked()
	return c.ID
}

// Seed adds each contact in order and returns the assigned IDs.
func (s *Store) Seed(cs []Contact) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, s.Add(c))
	}
	return ids
}

// Update replaces the record with the same ID in place.
// Unknown IDs are ignored; the return value reports whether anything changed.
func (s *Store) Update(c Contact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(c.ID)
	if i < 0 {
		s.log.Debug().Str("id", c.ID).Msg("update ignored: unknown id")
		return false
	}
	s.contacts[i] = c
	s.log.Debug().Str("id", c.ID).Msg("contact updated")
	s.notifyLocked()
	return true
}

// ToggleFavorite flips the favorite flag of the contact with id.
func (s *Store) ToggleFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.contacts[i].Favorite = !s.contacts[i].Favorite
	s.log.Debug().Str("id", id).Bool("favorite", s.contacts[i].Favorite).Msg("favorite toggled")
	s.notifyLocked()
	return true
}

// Delete removes the contact with id. Unknown IDs are ignored.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.log.Debug().Str("id", id).Msg("delete ignored: unknown id")
		return false
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	s.log.Debug().Str("id", id).Msg("contact deleted")
	s.notifyLocked()
	return true
}

// Get returns the contact with id, or false if there is none.
func (s *Store) Get(id string) (Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Contact{}, false
	}
	return s.contacts[i], true
}

// All returns every contact in insertion order.
func (s *Store) All() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}

// Search returns the contacts whose first name, last name or phone contains
// query, ignoring case, in store order. A blank query returns everything.
func (s *Store) Search(query string) []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.contacts, query)
}

// Filter applies the Search predicate to an arbitrary snapshot, keeping
// order. Subscribers use it to derive a filtered view from pushed state.
func Filter(contacts []Contact, query string) []Contact {
	if strings.TrimSpace(query) == "" {
		return append([]Contact{}, contacts...)
	}
	q := strings.ToLower(query)
	out := []Contact{}
	for _, c := range contacts {
		if c.matches(q) {
			out = append(out, c)
		}
	}
	return out
}

// Subscribe returns a channel that immediately holds the current snapshot
// and then receives a new snapshot after every mutation. The channel keeps
// only the latest snapshot: a slow reader skips intermediate states rather
// than blocking writers. cancel unsubscribes and closes the channel.
func (s *Store) Subscribe() (updates <-chan []Contact, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []Contact, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// notifyLocked pushes a snapshot to every subscriber, replacing any value a
// subscriber has not consumed yet. Callers must hold the write lock, which
// also makes this the only sender on each channel.
func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.snapshotLocked()
	}
}

func (s *Store) snapshotLocked() []Contact {
	return append([]Contact{}, s.contacts...)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return i
		}
	}
	return -1
}
