// Package session hosts one room: the single goroutine that owns the
// authoritative engine.State and serializes every inbound message.
// The loop is the mutual-exclusion mechanism. One message is fully
// handled (mutate plus broadcast) before the next is dequeued, so no
// locks guard the state.
package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/levels"
)

// Board extension: when any player is within extendMargin fields of the
// end, the host side appends extendChunk more and distributes them
// through the regular level-sequence update path.
const (
	extendMargin = 20
	extendChunk  = 40
)

type Msg interface{ isSessionMsg() }

// Join registers a participant's outbox. If the profile id is already
// seated (the host attaching its loopback, or a rebind) the outbox is
// replaced and no seat is added. Reply reports acceptance; a full room
// silently drops the request and replies false.
type Join struct {
	Profile engine.Player
	Outbox  chan Snapshot
	Reply   chan bool
}

func (Join) isSessionMsg() {}

// Leave signals channel loss. The seat is removed permanently; there is
// no reconnection path. A departing host ends the room for everyone.
type Leave struct{ PlayerID string }

func (Leave) isSessionMsg() {}

// FromClient carries one action attributed to the sender resolved by
// the transport (connection identity for remote players, the player's
// own id for the host loopback).
type FromClient struct {
	SenderID string
	Action   engine.Action
}

func (FromClient) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// GetView reflects internal state without data races; used by the hub
// reaper and by tests.
type GetView struct{ Reply chan View }

func (GetView) isSessionMsg() {}

// Snapshot is the full-state broadcast unit. Receivers replace their
// mirror wholesale and must treat the contents as read-only.
type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	LastActive time.Time
	State      engine.State
}

type Session struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot

	lastActive time.Time

	clock  clockwork.Clock
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, code string, host engine.Player, board []levels.Level, log *zap.Logger, clock clockwork.Clock) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		code:       code,
		inbox:      make(chan Msg, 64),
		state:      engine.NewState(code, host, board),
		clients:    make(map[string]chan Snapshot),
		clock:      clock,
		lastActive: clock.Now(),
		log:        log.With(zap.String("room", code)),
		ctx:        ctx,
		cancel:     cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Code() string { return s.code }

// Done is closed once the room has shut down; the hub uses it to drop
// its reference.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			s.lastActive = s.clock.Now()

			switch msg := m.(type) {
			case Join:
				s.handleJoin(msg)

			case Leave:
				s.handleLeave(msg.PlayerID)

			case FromClient:
				s.handleAction(msg.SenderID, msg.Action)

			case GetView:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					LastActive: s.lastActive,
					State:      s.state.Clone(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleJoin(msg Join) {
	// A known id only rebinds its outbox: the host attaching its local
	// view, or a client re-registering. No new seat, no broadcast.
	if s.state.PlayerIndex(msg.Profile.ID) >= 0 {
		s.clients[msg.Profile.ID] = msg.Outbox
		msg.Reply <- true
		msg.Outbox <- Snapshot{Version: s.version, State: s.state.Clone()}
		return
	}

	if len(s.state.Players) >= engine.MaxPlayers {
		// Dropped without a rejection message, matching the original
		// behavior; the transport layer may close the channel.
		s.log.Info("join dropped, room full", zap.String("player", msg.Profile.ID))
		msg.Reply <- false
		return
	}
	if s.state.Terminal() {
		s.log.Info("join dropped, room over", zap.String("player", msg.Profile.ID))
		msg.Reply <- false
		return
	}

	s.state.Players = append(s.state.Players, msg.Profile)
	s.clients[msg.Profile.ID] = msg.Outbox
	msg.Reply <- true

	s.log.Info("player joined",
		zap.String("player", msg.Profile.ID),
		zap.String("name", msg.Profile.Name),
		zap.Int("players", len(s.state.Players)))

	s.version++
	s.broadcast()
}

func (s *Session) handleLeave(playerID string) {
	idx := s.state.PlayerIndex(playerID)
	if ch, ok := s.clients[playerID]; ok {
		delete(s.clients, playerID)
		close(ch)
	}
	if idx < 0 {
		return
	}

	if s.state.Players[idx].IsHost {
		// The host's channel is the session; without it there is
		// nothing authoritative left to mirror.
		s.log.Info("host left, ending room")
		s.shutdown()
		return
	}

	s.state.Players = append(s.state.Players[:idx], s.state.Players[idx+1:]...)
	if n := len(s.state.Players); n > 0 {
		s.state.CurrentTurnIndex %= n
	} else {
		s.state.CurrentTurnIndex = 0
	}

	s.log.Info("player left", zap.String("player", playerID), zap.Int("players", len(s.state.Players)))

	s.version++
	s.broadcast()
}

func (s *Session) handleAction(senderID string, a engine.Action) {
	if err := engine.Apply(&s.state, senderID, a); err != nil {
		// Fail-open: unauthorized or malformed actions are dropped with
		// a diagnostic; the sender self-corrects off the next snapshot.
		s.log.Debug("action dropped",
			zap.String("sender", senderID),
			zap.String("kind", string(a.Kind)),
			zap.Error(err))
		return
	}

	s.maybeExtendBoard()

	s.version++
	s.broadcast()
}

// maybeExtendBoard keeps the shared level sequence ahead of the leading
// player, distributing the longer board via the regular update action
// so the mutation stays inside the router.
func (s *Session) maybeExtendBoard() {
	front := 0
	for i := range s.state.Players {
		if p := s.state.Players[i].Position; p > front {
			front = p
		}
	}
	if len(s.state.Levels)-front > extendMargin {
		return
	}

	host := s.state.Host()
	if host == nil {
		return
	}

	board := levels.Extend(append([]levels.Level(nil), s.state.Levels...), extendChunk)
	a := engine.Action{Kind: engine.ActUpdateLevels, Levels: board}
	if err := engine.Apply(&s.state, host.ID, a); err != nil {
		s.log.Warn("board extension failed", zap.Error(err))
		return
	}
	s.log.Debug("board extended", zap.Int("levels", len(board)))
}

// broadcast pushes the identical full snapshot down every registered
// outbox. The state is deep-copied once so pumps can read it while the
// loop keeps mutating the live copy. A blocked outbox means a dead or
// wedged pump; it is dropped rather than allowed to stall the room.
func (s *Session) broadcast() {
	snap := Snapshot{Version: s.version, State: s.state.Clone()}
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			s.log.Warn("dropping slow client", zap.String("player", id))
			delete(s.clients, id)
			close(ch)
		}
	}
}

func (s *Session) shutdown() {
	if !s.state.Terminal() {
		s.state.Status = engine.SessionEnded
		s.version++
		s.broadcast()
	}
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
