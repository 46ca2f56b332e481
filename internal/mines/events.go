package mines

import "fmt"

type EventKind uint8

const (
	MineTriggered EventKind = iota + 1
	Won
	FlagCountChanged
	TimedOut
	Recreated
)

func (k EventKind) String() string {
	switch k {
	case MineTriggered:
		return "mine_triggered"
	case Won:
		return "won"
	case FlagCountChanged:
		return "flag_count_changed"
	case TimedOut:
		return "timed_out"
	case Recreated:
		return "recreated"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	for kind := MineTriggered; kind <= Recreated; kind++ {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

type Event struct {
	Kind         EventKind `json:"kind"`
	FlaggedCount int       `json:"flagged_count"`
	// Point is the triggering cell, nil for events not tied to one.
	Point *Point `json:"point,omitempty"`
}

type subscription struct {
	id int
	fn func(Event)
}

type listeners struct {
	subs   []subscription
	nextID int
}

func (l *listeners) add(fn func(Event)) func() {
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, subscription{id, fn})
	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) emit(e Event) {
	subs := make([]subscription, len(l.subs))
	copy(subs, l.subs)
	for _, s := range subs {
		s.fn(e)
	}
}

// Subscribe registers fn for every event the game emits. Events are
// delivered synchronously, inside the command that caused them.
func (g *Game) Subscribe(fn func(Event)) (unsubscribe func()) {
	return g.listeners.add(fn)
}

func (g *Game) OnMineTriggered(fn func()) (unsubscribe func()) {
	return g.Subscribe(func(e Event) {
		if e.Kind == MineTriggered {
			fn()
		}
	})
}

func (g *Game) OnWon(fn func()) (unsubscribe func()) {
	return g.Subscribe(func(e Event) {
		if e.Kind == Won {
			fn()
		}
	})
}

func (g *Game) OnFlagCountChanged(fn func(count int)) (unsubscribe func()) {
	return g.Subscribe(func(e Event) {
		if e.Kind == FlagCountChanged {
			fn(e.FlaggedCount)
		}
	})
}

func (g *Game) OnTimedOut(fn func()) (unsubscribe func()) {
	return g.Subscribe(func(e Event) {
		if e.Kind == TimedOut {
			fn()
		}
	})
}
