package store

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ActionRecord is one dispatched action as seen by a recorder.
type ActionRecord struct {
	// RunID names the session that dispatched the action; Seq restarts at 1
	// for every run.
	RunID  string
	Seq    uint64
	Turn   int
	Action Action
	At     time.Time
}

// ActionRecorder receives every dispatched action after it is reduced.
// Implementations must not block.
type ActionRecorder interface {
	RecordAction(ActionRecord)
}

type Option func(*Store)

func WithRecorder(r ActionRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

func WithRunID(id string) Option {
	return func(s *Store) { s.runID = id }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

// Store serialises dispatches against a single State.
type Store struct {
	mu       sync.Mutex
	state    State
	runID    string
	seq      uint64
	subs     map[int]func(State)
	nextSub  int
	recorder ActionRecorder
	log      *logrus.Entry
	now      func() time.Time
}

func New(initial State, opts ...Option) *Store {
	s := &Store{
		state: initial,
		subs:  map[int]func(State){},
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a and notifies subscribers with the new state. Subscribers
// run after the lock is released and may dispatch again.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.seq++
	next := s.state
	rec := ActionRecord{RunID: s.runID, Seq: s.seq, Turn: next.Turn, Action: a, At: s.now().UTC()}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if _, ok := a.(UnknownAction); ok && s.log != nil {
		s.log.WithField("type", a.Type()).Debug("unhandled action")
	}
	if s.recorder != nil {
		s.recorder.RecordAction(rec)
	}
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
