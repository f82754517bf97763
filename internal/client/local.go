package client

import (
	"errors"
	"sync"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/session"
)

var ErrSessionClosed = errors.New("session closed")

// Local is the host's emitter: actions loop straight into the session
// actor with the host's own id as sender, and the mirror is fed by the
// same broadcast every remote participant receives.
type Local struct {
	sess *session.Session
	id   string

	mu      sync.RWMutex
	state   engine.State
	version int
	seen    bool

	onState OnState
}

// NewLocal attaches the host's view to its session. The host profile
// must already be seated (the hub seats it at room creation), so the
// join only rebinds the outbox.
func NewLocal(sess *session.Session, host engine.Player, onState OnState) (*Local, error) {
	l := &Local{sess: sess, id: host.ID, onState: onState}

	out := make(chan session.Snapshot, 8)
	reply := make(chan bool, 1)
	select {
	case sess.Inbox() <- session.Join{Profile: host, Outbox: out, Reply: reply}:
	case <-sess.Done():
		return nil, ErrSessionClosed
	}
	select {
	case ok := <-reply:
		if !ok {
			return nil, ErrSessionClosed
		}
	case <-sess.Done():
		return nil, ErrSessionClosed
	}

	go l.pump(out)
	return l, nil
}

func (l *Local) pump(out <-chan session.Snapshot) {
	for snap := range out {
		l.mu.Lock()
		l.state = snap.State
		l.version = snap.Version
		l.seen = true
		l.mu.Unlock()

		if l.onState != nil {
			l.onState(snap.State)
		}
	}
}

func (l *Local) SendAction(a engine.Action) error {
	select {
	case l.sess.Inbox() <- session.FromClient{SenderID: l.id, Action: a}:
		return nil
	case <-l.sess.Done():
		return ErrSessionClosed
	}
}

func (l *Local) MyID() string { return l.id }

func (l *Local) MyProfile() (engine.Player, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.seen {
		return engine.Player{}, false
	}
	if i := l.state.PlayerIndex(l.id); i >= 0 {
		return l.state.Players[i], true
	}
	return engine.Player{}, false
}

func (l *Local) State() (engine.State, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.version
}

// Close detaches the host's view. The host leaving ends the room for
// everyone; there is no authoritative state without it.
func (l *Local) Close() error {
	select {
	case l.sess.Inbox() <- session.Leave{PlayerID: l.id}:
	case <-l.sess.Done():
	}
	return nil
}
