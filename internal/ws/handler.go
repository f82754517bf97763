// Package ws adapts WebSocket connections to session channels: one
// reliable ordered byte stream per participant, JOIN_REQUEST first,
// actions up, full-state snapshots down.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/hub"
	"github.com/fortuna-game/fortuna-backend/internal/session"
	"github.com/fortuna-game/fortuna-backend/internal/types"
)

const (
	// A joiner that never identifies itself is cut loose quickly; after
	// the handshake reads block indefinitely (turns are human-paced).
	handshakeTimeout = 10 * time.Second

	writeTimeout = 3 * time.Second
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log = log.With(zap.String("room", code))

		// Handshake: the first frame must be a join request.
		profile, ok := readJoin(r.Context(), conn)
		if !ok {
			conn.Close(websocket.StatusPolicyViolation, "expected join request")
			return
		}

		out := make(chan session.Snapshot, 8)
		accepted := make(chan bool, 1)
		if !send(sess, session.Join{Profile: profile, Outbox: out, Reply: accepted}) {
			conn.Close(websocket.StatusGoingAway, "room closed")
			return
		}
		ok = false
		select {
		case ok = <-accepted:
		case <-sess.Done():
		}
		if !ok {
			// The session itself sends no rejection message; closing the
			// channel is the only signal the joiner gets.
			conn.Close(websocket.StatusPolicyViolation, "join rejected")
			return
		}
		defer send(sess, session.Leave{PlayerID: profile.ID})

		log.Info("channel open", zap.String("player", profile.ID))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()

		// Writer: the snapshot pump. Closing the outbox ends it.
		go func() {
			ack := types.ServerMessage{Type: types.MsgJoined, PlayerID: profile.ID, RoomID: code}
			if !writeMsg(writeCtx, conn, ack) {
				return
			}
			for snap := range out {
				msg := types.ServerMessage{Type: types.MsgStateUpdate, Version: snap.Version, State: &snap.State}
				if !writeMsg(writeCtx, conn, msg) {
					return
				}
			}
			// Session closed our outbox: the room is gone.
			conn.Close(websocket.StatusGoingAway, "room closed")
		}()

		// Reader loop; any error ends membership permanently.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Info("channel lost", zap.String("player", profile.ID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				log.Warn("bad frame", zap.String("player", profile.ID), zap.Error(err))
				continue
			}

			action, ok := types.ToAction(cm)
			if !ok {
				log.Warn("unknown message type", zap.String("player", profile.ID), zap.String("type", cm.Type))
				continue
			}

			if !send(sess, session.FromClient{SenderID: profile.ID, Action: action}) {
				return
			}
		}
	}
}

// send delivers a message unless the room has already shut down.
func send(sess *session.Session, msg session.Msg) bool {
	select {
	case sess.Inbox() <- msg:
		return true
	case <-sess.Done():
		return false
	}
}

// readJoin waits briefly for the JOIN_REQUEST frame and returns the
// carried profile.
func readJoin(ctx context.Context, conn *websocket.Conn) (engine.Player, bool) {
	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		return engine.Player{}, false
	}

	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return engine.Player{}, false
	}
	if cm.Type != types.MsgJoinRequest || cm.Profile == nil || cm.Profile.ID == "" {
		return engine.Player{}, false
	}
	return *cm.Profile, true
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload) == nil
}
