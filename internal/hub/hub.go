// Package hub keeps the registry of live rooms: it mints join codes,
// creates and looks up sessions, and reaps rooms that have gone idle.
package hub

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/levels"
	"github.com/fortuna-game/fortuna-backend/internal/session"
)

// Room codes double as the human-typeable join code and the rendezvous
// address, so they stay short and unambiguous.
const (
	codeLen     = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	initialBoardSize = 100
)

type HubMsg interface{ isHubMsg() }

// CreateRoom mints a fresh code, seeds the board and seats the given
// profile as host.
type CreateRoom struct {
	Host  engine.Player
	Reply chan Created
}

type Created struct {
	Code    string
	Session *session.Session
}

type GetRoom struct {
	Code  string
	Reply chan *session.Session
}

type RemoveRoom struct{ Code string }

type ShutdownHub struct{}

type reapTick struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}
func (reapTick) isHubMsg()    {}

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*session.Session

	clock       clockwork.Clock
	idleTimeout time.Duration

	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the hub actor. With idleTimeout > 0 a reaper wakes twice
// per timeout window and shuts down rooms idle past the window.
func New(parent context.Context, log *zap.Logger, clock clockwork.Clock, idleTimeout time.Duration) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:       make(chan HubMsg, 64),
		rooms:       make(map[string]*session.Session),
		clock:       clock,
		idleTimeout: idleTimeout,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	go h.loop()
	if idleTimeout > 0 {
		go h.reaperLoop()
	}
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code := h.newCode()
				board := levels.Generate(initialBoardSize, 0, "")
				sess := session.New(h.ctx, code, msg.Host, board, h.log, h.clock)
				h.rooms[code] = sess
				h.log.Info("room created", zap.String("room", code), zap.String("host", msg.Host.ID))
				msg.Reply <- Created{Code: code, Session: sess}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case reapTick:
				h.reap()

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// newCode draws until the code is free. Collisions are rare enough that
// re-drawing beats any bookkeeping.
func (h *Hub) newCode() string {
	for {
		code := make([]byte, codeLen)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			code[i] = codeCharset[n.Int64()]
		}
		if _, taken := h.rooms[string(code)]; !taken {
			return string(code)
		}
		h.log.Debug("room code collision, redrawing")
	}
}

func (h *Hub) reaperLoop() {
	ticker := h.clock.NewTicker(h.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.Chan():
			select {
			case h.inbox <- reapTick{}:
			case <-h.ctx.Done():
				return
			}
		}
	}
}

// reap removes rooms that already shut down and shuts down rooms whose
// last activity is older than the idle window.
func (h *Hub) reap() {
	cutoff := h.clock.Now().Add(-h.idleTimeout)

	for code, sess := range h.rooms {
		select {
		case <-sess.Done():
			delete(h.rooms, code)
			continue
		default:
		}

		reply := make(chan session.View, 1)
		sess.Inbox() <- session.GetView{Reply: reply}
		var v session.View
		select {
		case v = <-reply:
		case <-sess.Done():
			// Shut down between the liveness check and the view reply.
			delete(h.rooms, code)
			continue
		}

		if v.LastActive.Before(cutoff) {
			h.log.Info("reaping idle room", zap.String("room", code))
			sess.Inbox() <- session.Shutdown{}
			delete(h.rooms, code)
		}
	}
}

func (h *Hub) shutdown() {
	for code, sess := range h.rooms {
		sess.Inbox() <- session.Shutdown{}
		delete(h.rooms, code)
	}
	h.cancel()
}
