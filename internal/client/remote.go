package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/types"
)

var (
	ErrJoinRejected  = errors.New("join rejected")
	ErrUnknownAction = errors.New("unknown action kind")
)

const writeTimeout = 3 * time.Second

// Remote is a non-host participant: one channel up to the host, a
// read-only mirror replaced wholesale on every STATE_UPDATE, never
// merged or patched.
type Remote struct {
	conn    *websocket.Conn
	id      string
	profile engine.Player

	mu      sync.RWMutex
	state   engine.State
	version int
	seen    bool

	onState OnState
	log     *zap.Logger

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to a room, performs the join handshake and starts the
// snapshot pump. baseURL is the server root (http or ws scheme); the
// room code addresses the session.
func Dial(ctx context.Context, baseURL, code, name string, avatar engine.Avatar, onState OnState, log *zap.Logger) (*Remote, error) {
	r := &Remote{
		id:      uuid.NewString(),
		onState: onState,
		log:     log.With(zap.String("room", code)),
		closed:  make(chan struct{}),
	}
	r.profile = engine.NewPlayer(r.id, name, avatar, false)

	url := fmt.Sprintf("%s/ws?code=%s", baseURL, code)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial room %s: %w", code, err)
	}
	r.conn = conn

	join := types.ClientMessage{Type: types.MsgJoinRequest, Profile: &r.profile}
	if err := r.write(ctx, join); err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		return nil, fmt.Errorf("send join request: %w", err)
	}

	// A full room never answers; it just closes the channel.
	if err := r.awaitAck(ctx); err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		return nil, err
	}

	go r.pump()
	return r, nil
}

func (r *Remote) awaitAck(ctx context.Context) error {
	_, data, err := r.conn.Read(ctx)
	if err != nil {
		return ErrJoinRejected
	}
	var msg types.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != types.MsgJoined {
		return ErrJoinRejected
	}
	return nil
}

// pump replaces the mirror on every snapshot until the channel dies.
// Channel loss is fatal to session membership; Closed() is the signal
// the UI layer resets on.
func (r *Remote) pump() {
	defer r.closeOnce.Do(func() { close(r.closed) })

	for {
		_, data, err := r.conn.Read(context.Background())
		if err != nil {
			r.log.Info("disconnected from host", zap.Error(err))
			return
		}

		var msg types.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			r.log.Warn("bad frame", zap.Error(err))
			continue
		}
		if msg.Type != types.MsgStateUpdate || msg.State == nil {
			r.log.Warn("unknown message type", zap.String("type", msg.Type))
			continue
		}

		r.mu.Lock()
		r.state = *msg.State
		r.version = msg.Version
		r.seen = true
		r.mu.Unlock()

		if r.onState != nil {
			r.onState(*msg.State)
		}
	}
}

func (r *Remote) SendAction(a engine.Action) error {
	cm, ok := types.FromAction(a)
	if !ok {
		return ErrUnknownAction
	}
	return r.write(context.Background(), cm)
}

func (r *Remote) write(ctx context.Context, msg types.ClientMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return r.conn.Write(wctx, websocket.MessageText, payload)
}

func (r *Remote) MyID() string { return r.id }

func (r *Remote) MyProfile() (engine.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.seen {
		return engine.Player{}, false
	}
	if i := r.state.PlayerIndex(r.id); i >= 0 {
		return r.state.Players[i], true
	}
	return engine.Player{}, false
}

func (r *Remote) State() (engine.State, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.version
}

// Closed is closed once the channel to the host is gone, for whatever
// reason. There is no reconnection path.
func (r *Remote) Closed() <-chan struct{} { return r.closed }

func (r *Remote) Close() error {
	return r.conn.Close(websocket.StatusNormalClosure, "bye")
}
