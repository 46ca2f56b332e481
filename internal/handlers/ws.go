package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/session"
)

type wsCommand string

const (
	wsGet      wsCommand = "g"
	wsOpen     wsCommand = "o"
	wsFlag     wsCommand = "f"
	wsRecreate wsCommand = "n"
)

var commandNargs = map[wsCommand]int{
	wsGet:      0,
	wsOpen:     2,
	wsFlag:     2,
	wsRecreate: 0,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("invalid number of arguments")
	errSessionClosed  = errors.New("game session closed")
)

type Command struct {
	Name wsCommand
	X, Y int
}

func parseXY(args []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("first argument must be an int")
		return
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("second argument must be an int")
		return
	}
	return
}

func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	name := wsCommand(parts[0])
	nargs, ok := commandNargs[name]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, ErrBadArguments
	}
	c := Command{Name: name}
	if nargs == 2 {
		x, y, err := parseXY(parts[1:])
		if err != nil {
			return Command{}, err
		}
		c.X, c.Y = x, y
	}
	return c, nil
}

func (g GameHandler) execute(ctx context.Context, s *session.Session, c Command) (*session.Snapshot, error) {
	switch c.Name {
	case wsOpen:
		_, err := s.Reveal(ctx, c.X, c.Y)
		return nil, err
	case wsFlag:
		_, err := s.ToggleFlag(ctx, c.X, c.Y)
		return nil, err
	case wsRecreate:
		s.Recreate()
		return nil, nil
	default:
		snap := s.Snapshot()
		return &snap, nil
	}
}

// ConnectWS streams the session to the client after every command and every
// countdown tick. Commands arrive as text, one per line.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		g.fail(w, err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(slog.String("session", s.ID().String()))
	logger.Debug("established WS connection")

	updates, unsubscribe := s.Observe()
	defer unsubscribe()

	replies := make(chan any, 8)
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		<-ctx.Done()
		conn.Close()
		return nil
	})
	eg.Go(func() error {
		return g.wsReadLoop(ctx, conn, s, replies)
	})
	eg.Go(func() error {
		return g.wsWriteLoop(ctx, conn, s, updates, replies)
	})

	err = eg.Wait()
	if errors.Is(err, errSessionClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug("WS connection closed", slog.Any("reason", err))
		return
	}
	logger.Warn("abnormal ws break", slog.Any("error", err))
}

func (g GameHandler) wsReadLoop(
	ctx context.Context, conn *websocket.Conn, s *session.Session, replies chan<- any,
) error {
	conn.SetReadLimit(g.ws.ReadLimit)
	conn.SetReadDeadline(time.Now().Add(g.ws.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.ws.PongWait))
	})

	reply := func(v any) error {
		select {
		case replies <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			continue
		}

		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			c, err := ParseCommand(line)
			if err == nil {
				var snap *session.Snapshot
				snap, err = g.execute(ctx, s, c)
				if snap != nil {
					if err := reply(NewGameSessionDTO(*snap)); err != nil {
						return err
					}
				}
			}
			if err != nil {
				g.logger.Debug(
					"unable to process command",
					slog.String("command", line), slog.Any("error", err),
				)
				if err := reply(wrapError(err)); err != nil {
					return err
				}
			}
		}
	}
}

func (g GameHandler) wsWriteLoop(
	ctx context.Context,
	conn *websocket.Conn,
	s *session.Session,
	updates <-chan session.Snapshot,
	replies <-chan any,
) error {
	ping := time.NewTicker(g.ws.PingPeriod)
	defer ping.Stop()

	write := func(v any) error {
		conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
		return conn.WriteJSON(v)
	}

	if err := write(NewGameSessionDTO(s.Snapshot())); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game session closed"),
					time.Now().Add(g.ws.WriteWait),
				)
				return errSessionClosed
			}
			if err := write(NewGameSessionDTO(snap)); err != nil {
				return err
			}
		case v := <-replies:
			if err := write(v); err != nil {
				return err
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
