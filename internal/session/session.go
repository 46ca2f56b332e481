package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/countdown"
	"github.com/vancomm/minefield/internal/mines"
)

// Snapshot is a copy of everything a renderer may show about a session.
type Snapshot struct {
	ID           uuid.UUID
	PlayerID     *int64
	Generation   int
	Params       mines.GameParams
	Grid         mines.PlayerGrid
	FlaggedCount int
	Dead         bool
	Won          bool
	TimedOut     bool
	SecondsLeft  int
	StartedAt    time.Time
	EndedAt      *time.Time
	// Events emitted by the field since the previous snapshot was published.
	Events []mines.Event
}

func (s Snapshot) GameOver() bool {
	return s.Dead || s.Won
}

// Session pairs one field with its countdown. Every command runs under the
// session lock, so the field only ever sees one mutator at a time.
type Session struct {
	id       uuid.UUID
	playerID *int64
	manager  *Manager

	mu           sync.Mutex
	game         *mines.Game
	timer        *countdown.Timer
	generation   int
	startedAt    time.Time
	endedAt      *time.Time
	lastActive   time.Time
	pending      []mines.Event
	finished     bool
	closed       bool
	observers    map[int]chan Snapshot
	nextObserver int
}

func newSession(m *Manager, game *mines.Game, playerID *int64) *Session {
	now := m.clock.Now()
	s := &Session{
		id:         uuid.New(),
		playerID:   playerID,
		manager:    m,
		game:       game,
		startedAt:  now,
		lastActive: now,
		observers:  make(map[int]chan Snapshot),
	}
	game.Subscribe(s.handleEvent)

	s.timer = countdown.New(m.clock, m.timeLimit)
	s.timer.OnTick(s.tick)
	s.timer.OnExpire(s.expire)
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) PlayerID() *int64 { return s.playerID }

func (s *Session) log() *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"session": s.id.String(),
		"params":  s.game.Params().Seed(),
	})
}

// handleEvent runs synchronously inside whatever command is holding s.mu.
func (s *Session) handleEvent(e mines.Event) {
	s.pending = append(s.pending, e)
	switch e.Kind {
	case mines.MineTriggered, mines.Won, mines.TimedOut:
		_ = s.timer.Stop()
		now := s.manager.clock.Now()
		s.endedAt = &now
		s.finished = true
		s.log().WithField("outcome", e.Kind.String()).Info("game over")
	}
}

func (s *Session) Reveal(ctx context.Context, x, y int) (Snapshot, error) {
	return s.command(ctx, "reveal", func(g *mines.Game) error {
		return g.Reveal(x, y)
	})
}

func (s *Session) ToggleFlag(ctx context.Context, x, y int) (Snapshot, error) {
	return s.command(ctx, "flag", func(g *mines.Game) error {
		return g.ToggleFlag(x, y)
	})
}

func (s *Session) command(
	ctx context.Context, name string, fn func(*mines.Game) error,
) (Snapshot, error) {
	s.mu.Lock()
	s.lastActive = s.manager.clock.Now()
	if err := fn(s.game); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	s.manager.metrics.Command(name)
	result, ok := s.takeResult()
	snap := s.publish()
	s.mu.Unlock()

	if ok {
		s.manager.record(ctx, result)
	}
	return snap, nil
}

// Recreate lays out a new field with the same parameters and restarts the
// countdown. The previous field is dropped without being recorded.
func (s *Session) Recreate() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshot(nil)
	}

	s.lastActive = s.manager.clock.Now()
	s.game.Recreate()
	s.generation++
	s.startedAt = s.lastActive
	s.endedAt = nil
	s.finished = false
	s.timer.Restart(s.manager.ctx, s.manager.timeLimit)
	s.manager.metrics.GameStarted(s.game.Params().LevelName())
	s.log().WithField("generation", s.generation).Debug("recreated")

	return s.publish()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(nil)
}

// Observe delivers a snapshot after every change. A slow observer only
// ever sees the latest one. The channel is closed when the session goes away.
func (s *Session) Observe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) tick(int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.game.IsGameOver() {
		return
	}
	s.publish()
}

func (s *Session) expire() {
	s.mu.Lock()
	// a late callback from a countdown that has since been restarted
	if s.closed || s.timer.Seconds() > 0 || s.game.IsGameOver() {
		s.mu.Unlock()
		return
	}
	s.game.Expire()
	result, ok := s.takeResult()
	s.publish()
	s.mu.Unlock()

	if ok {
		s.manager.record(s.manager.ctx, result)
	}
}

func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.timer.Start(s.manager.ctx)
	s.manager.metrics.GameStarted(s.game.Params().LevelName())
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.timer.Stop()
	for id, ch := range s.observers {
		close(ch)
		delete(s.observers, id)
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) takeResult() (Result, bool) {
	if !s.finished {
		return Result{}, false
	}
	s.finished = false
	return Result{
		SessionID:  s.id,
		Generation: s.generation,
		PlayerID:   s.playerID,
		Params:     s.game.Params(),
		Won:        s.game.DidWin(),
		TimedOut:   s.game.TimedOut(),
		StartedAt:  s.startedAt,
		EndedAt:    *s.endedAt,
	}, true
}

func (s *Session) snapshot(events []mines.Event) Snapshot {
	snap := Snapshot{
		ID:           s.id,
		PlayerID:     s.playerID,
		Generation:   s.generation,
		Params:       s.game.Params(),
		Grid:         s.game.View(),
		FlaggedCount: s.game.FlaggedCount(),
		Dead:         s.game.Dead(),
		Won:          s.game.DidWin(),
		TimedOut:     s.game.TimedOut(),
		SecondsLeft:  s.timer.Seconds(),
		StartedAt:    s.startedAt,
		Events:       events,
	}
	if s.endedAt != nil {
		endedAt := *s.endedAt
		snap.EndedAt = &endedAt
	}
	return snap
}

func (s *Session) publish() Snapshot {
	snap := s.snapshot(s.pending)
	s.pending = nil
	for _, ch := range s.observers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return snap
}
