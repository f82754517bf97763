package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/httpapi"
	"github.com/fortuna-game/fortuna-backend/internal/hub"
	"github.com/fortuna-game/fortuna-backend/internal/session"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type testServer struct {
	hub *hub.Hub
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.New(ctx, zap.NewNop(), clockwork.NewRealClock(), time.Hour)
	srv := httptest.NewServer(httpapi.SetupRoutes(h, zap.NewNop()))
	t.Cleanup(srv.Close)

	return &testServer{hub: h, srv: srv}
}

// createRoom drives the same HTTP endpoint a real lobby screen would.
func (ts *testServer) createRoom(t *testing.T, name string) (code, hostID string) {
	t.Helper()
	body := strings.NewReader(`{"name":"` + name + `","avatar":"robot"}`)
	resp, err := http.Post(ts.srv.URL+"/rooms", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Code   string `json:"code"`
		HostID string `json:"hostId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Code, out.HostID
}

func (ts *testServer) room(t *testing.T, code string) *session.Session {
	t.Helper()
	reply := make(chan *session.Session, 1)
	ts.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	sess := <-reply
	require.NotNil(t, sess)
	return sess
}

func TestEndToEnd_RemoteMirrorsHostAuthority(t *testing.T) {
	ts := newTestServer(t)
	code, hostID := ts.createRoom(t, "Ada")
	sess := ts.room(t, code)

	host := engine.NewPlayer(hostID, "Ada", engine.AvatarRobot, true)
	local, err := NewLocal(sess, host, nil)
	require.NoError(t, err)
	defer local.Close()

	remote, err := Dial(context.Background(), ts.srv.URL, code, "Bob", engine.AvatarFemale, nil, zap.NewNop())
	require.NoError(t, err)
	defer remote.Close()

	// Both sides see the full roster before the game starts.
	require.Eventually(t, func() bool {
		s, _ := remote.State()
		return len(s.Players) == 2
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		s, _ := local.State()
		return len(s.Players) == 2
	}, waitFor, tick)

	require.NoError(t, local.SendAction(engine.Action{Kind: engine.ActStartGame}))
	require.Eventually(t, func() bool {
		s, _ := remote.State()
		return s.Status == engine.SessionPlaying
	}, waitFor, tick)

	// Rolling moves the host but does not hand over the turn.
	require.NoError(t, local.SendAction(engine.Action{Kind: engine.ActDiceRoll, Steps: 4}))
	require.Eventually(t, func() bool {
		s, _ := remote.State()
		i := s.PlayerIndex(hostID)
		return i >= 0 && s.Players[i].Position == 4 && s.CurrentTurnIndex == 0
	}, waitFor, tick)

	// Closing the interaction does.
	require.NoError(t, local.SendAction(engine.Action{Kind: engine.ActInteractionEnd}))
	require.Eventually(t, func() bool {
		s, _ := remote.State()
		return s.CurrentTurnIndex == 1
	}, waitFor, tick)

	// Now the remote holds the turn and its action lands.
	require.NoError(t, remote.SendAction(engine.Action{Kind: engine.ActDiceRoll, Steps: 2}))
	require.Eventually(t, func() bool {
		s, _ := local.State()
		i := s.PlayerIndex(remote.MyID())
		return i >= 0 && s.Players[i].Position == 2
	}, waitFor, tick)

	p, ok := remote.MyProfile()
	require.True(t, ok)
	require.Equal(t, "Bob", p.Name)
	require.False(t, p.IsHost)
}

func TestEndToEnd_OutOfTurnActionIsDropped(t *testing.T) {
	ts := newTestServer(t)
	code, hostID := ts.createRoom(t, "Ada")
	sess := ts.room(t, code)

	host := engine.NewPlayer(hostID, "Ada", engine.AvatarRobot, true)
	local, err := NewLocal(sess, host, nil)
	require.NoError(t, err)
	defer local.Close()

	remote, err := Dial(context.Background(), ts.srv.URL, code, "Bob", engine.AvatarFemale, nil, zap.NewNop())
	require.NoError(t, err)
	defer remote.Close()

	require.NoError(t, local.SendAction(engine.Action{Kind: engine.ActStartGame}))
	require.Eventually(t, func() bool {
		s, _ := remote.State()
		return s.Status == engine.SessionPlaying
	}, waitFor, tick)
	_, startVersion := remote.State()

	// Turn index 0 belongs to the host; the remote's roll must vanish
	// without an error and without a broadcast.
	require.NoError(t, remote.SendAction(engine.Action{Kind: engine.ActDiceRoll, Steps: 6}))

	require.NoError(t, local.SendAction(engine.Action{Kind: engine.ActDiceRoll, Steps: 1}))
	require.Eventually(t, func() bool {
		s, v := remote.State()
		if v <= startVersion {
			return false
		}
		i := s.PlayerIndex(remote.MyID())
		return i >= 0 && s.Players[i].Position == 0
	}, waitFor, tick)
}

func TestEndToEnd_FullRoomRejectsSeventhPlayer(t *testing.T) {
	ts := newTestServer(t)
	code, hostID := ts.createRoom(t, "Ada")
	sess := ts.room(t, code)

	host := engine.NewPlayer(hostID, "Ada", engine.AvatarRobot, true)
	local, err := NewLocal(sess, host, nil)
	require.NoError(t, err)
	defer local.Close()

	names := []string{"B", "C", "D", "E", "F"}
	for _, name := range names {
		r, err := Dial(context.Background(), ts.srv.URL, code, name, engine.AvatarFemale, nil, zap.NewNop())
		require.NoError(t, err)
		defer r.Close()
	}

	require.Eventually(t, func() bool {
		s, _ := local.State()
		return len(s.Players) == engine.MaxPlayers
	}, waitFor, tick)

	_, err = Dial(context.Background(), ts.srv.URL, code, "G", engine.AvatarFemale, nil, zap.NewNop())
	require.ErrorIs(t, err, ErrJoinRejected)

	s, _ := local.State()
	require.Len(t, s.Players, engine.MaxPlayers)
}

func TestEndToEnd_HostLeavingEndsRoom(t *testing.T) {
	ts := newTestServer(t)
	code, hostID := ts.createRoom(t, "Ada")
	sess := ts.room(t, code)

	host := engine.NewPlayer(hostID, "Ada", engine.AvatarRobot, true)
	local, err := NewLocal(sess, host, nil)
	require.NoError(t, err)

	remote, err := Dial(context.Background(), ts.srv.URL, code, "Bob", engine.AvatarFemale, nil, zap.NewNop())
	require.NoError(t, err)
	defer remote.Close()

	require.Eventually(t, func() bool {
		s, _ := remote.State()
		return len(s.Players) == 2
	}, waitFor, tick)

	require.NoError(t, local.Close())

	select {
	case <-remote.Closed():
	case <-time.After(waitFor):
		t.Fatal("remote never noticed the room closing")
	}
	select {
	case <-sess.Done():
	case <-time.After(waitFor):
		t.Fatal("session never shut down")
	}
}
