package memory

import (
	"sync"
	"time"

	"glassrelay/internal/domain/relay"
)

const (
	DefaultCapacity = 1000
	sweepInterval   = 30 * time.Second
)

type Options struct {
	Capacity       int
	SessionTimeout time.Duration
	SessionGrace   time.Duration
	Now            func() time.Time
}

// Store owns all relay state for one process: the bounded event ring, the
// session map and pending awaiters. Everything sits behind a single lock.
type Store struct {
	mu sync.RWMutex

	ring       []relay.Event
	head       int
	size       int
	highWater  uint64
	totalAdded uint64
	byType     map[relay.EventType]int

	sessions  map[string]relay.Session
	lastSweep time.Time

	waiters    map[uint64]*waiter
	nextWaiter uint64

	sessionTimeout time.Duration
	sessionGrace   time.Duration
	now            func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		ring:           make([]relay.Event, opts.Capacity),
		byType:         make(map[relay.EventType]int),
		sessions:       make(map[string]relay.Session),
		waiters:        make(map[uint64]*waiter),
		sessionTimeout: opts.SessionTimeout,
		sessionGrace:   opts.SessionGrace,
		now:            opts.Now,
	}
}

func (s *Store) Capacity() int {
	return len(s.ring)
}

// oldestLocked is the smallest retained sequence, or highWater+1 when
// nothing is retained.
func (s *Store) oldestLocked() uint64 {
	if s.size == 0 {
		return s.highWater + 1
	}
	return s.ring[s.head].Sequence
}

func (s *Store) at(offset int) relay.Event {
	return s.ring[(s.head+offset)%len(s.ring)]
}

func (s *Store) appendLocked(e relay.Event) relay.Event {
	s.highWater++
	s.totalAdded++
	e.Sequence = s.highWater
	e.Data = e.Data.Clone()

	if s.size == len(s.ring) {
		evicted := s.ring[s.head]
		s.decType(evicted.Type)
		s.ring[s.head] = relay.Event{}
		s.head = (s.head + 1) % len(s.ring)
		s.size--
	}
	s.ring[(s.head+s.size)%len(s.ring)] = e
	s.size++
	s.byType[e.Type]++

	s.notifyLocked(e)
	return e
}

func (s *Store) decType(t relay.EventType) {
	if s.byType[t] <= 1 {
		delete(s.byType, t)
		return
	}
	s.byType[t]--
}

func (s *Store) clearLocked() {
	for i := range s.ring {
		s.ring[i] = relay.Event{}
	}
	s.head = 0
	s.size = 0
	s.byType = make(map[relay.EventType]int)
}

func (s *Store) sweepSessionsLocked(now time.Time) {
	if !s.lastSweep.IsZero() && now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, sess := range s.sessions {
		if sess.Evictable(now, s.sessionTimeout, s.sessionGrace) {
			delete(s.sessions, id)
		}
	}
}
