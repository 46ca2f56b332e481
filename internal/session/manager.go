package session

import (
	"context"
	"errors"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/countdown"
	"github.com/vancomm/minefield/internal/metrics"
	"github.com/vancomm/minefield/internal/mines"
)

var Log = logrus.New()

var ErrNotFound = errors.New("session not found")

const (
	DefaultIdleTimeout = 30 * time.Minute
	// MinReapInterval bounds how often Run scans for idle sessions.
	MinReapInterval = time.Second
)

// Result is what gets recorded once a field is won or lost.
type Result struct {
	SessionID uuid.UUID
	// Generation tells apart the fields of one session across recreations.
	Generation int
	PlayerID   *int64
	Params     mines.GameParams
	Won        bool
	TimedOut   bool
	StartedAt  time.Time
	EndedAt    time.Time
}

func (r Result) Outcome() string {
	switch {
	case r.Won:
		return "won"
	case r.TimedOut:
		return "timed_out"
	default:
		return "mine"
	}
}

func (r Result) Playtime() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

type ResultStore interface {
	SaveResult(ctx context.Context, r Result) error
}

type Options struct {
	Clock   clock.Clock
	Rand    *rand.Rand
	Store   ResultStore
	Metrics *metrics.Metrics
	// TimeLimit is the countdown length in seconds.
	TimeLimit   int
	IdleTimeout time.Duration
}

type Manager struct {
	clock       clock.Clock
	store       ResultStore
	metrics     *metrics.Metrics
	timeLimit   int
	idleTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	rnd      *rand.Rand
	sessions map[uuid.UUID]*Session
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		opts.Rand = NewRand()
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = countdown.DefaultSeconds
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clock:       opts.Clock,
		store:       opts.Store,
		metrics:     opts.Metrics,
		timeLimit:   opts.TimeLimit,
		idleTimeout: opts.IdleTimeout,
		ctx:         ctx,
		cancel:      cancel,
		rnd:         opts.Rand,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Create lays out a new field and starts its countdown.
func (m *Manager) Create(params mines.GameParams, playerID *int64) (*Session, error) {
	m.mu.Lock()
	r := rand.New(rand.NewPCG(m.rnd.Uint64(), m.rnd.Uint64()))
	m.mu.Unlock()

	game, err := mines.New(params, r)
	if err != nil {
		return nil, err
	}
	s := newSession(m, game, playerID)

	m.mu.Lock()
	m.sessions[s.id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	s.start()
	m.metrics.SessionsChanged(n)
	s.log().Debug("session created")
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.close()
		m.metrics.SessionsChanged(n)
	}
}

// Reap drops sessions nobody has touched for longer than the idle timeout
// and reports how many went away.
func (m *Manager) Reap() int {
	deadline := m.clock.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var stale []uuid.UUID
	for id, s := range m.sessions {
		if s.idleSince().Before(deadline) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.Remove(id)
	}
	if len(stale) > 0 {
		Log.WithField("count", len(stale)).Info("reaped idle sessions")
	}
	return len(stale)
}

func (m *Manager) reapInterval() time.Duration {
	return max(m.idleTimeout/2, MinReapInterval)
}

// Run reaps idle sessions until ctx is done, then closes the manager.
func (m *Manager) Run(ctx context.Context) error {
	ticker := m.clock.Ticker(m.reapInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Close()
			return nil
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Close stops every countdown and drops every session.
func (m *Manager) Close() {
	m.cancel()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	m.metrics.SessionsChanged(0)
}

func (m *Manager) record(ctx context.Context, r Result) {
	m.metrics.GameFinished(r.Params.LevelName(), r.Outcome())
	if m.store == nil {
		return
	}
	if err := m.store.SaveResult(ctx, r); err != nil {
		Log.WithError(err).WithField("session", r.SessionID.String()).
			Error("unable to record game result")
	}
}
