package hub

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/session"
)

func createRoom(t *testing.T, h *Hub) Created {
	t.Helper()
	reply := make(chan Created, 1)
	host := engine.NewPlayer("host", "Host", engine.AvatarMale, true)
	h.Inbox() <- CreateRoom{Host: host, Reply: reply}
	select {
	case c := <-reply:
		return c
	case <-time.After(time.Second):
		t.Fatalf("timed out creating room")
		return Created{} // unreachable
	}
}

func getRoom(t *testing.T, h *Hub, code string) *session.Session {
	t.Helper()
	reply := make(chan *session.Session, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case s := <-reply:
		return s
	case <-time.After(time.Second):
		t.Fatalf("timed out getting room")
		return nil // unreachable
	}
}

func TestCreateRoom_MintsCodeAndSeedsBoard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := New(ctx, zap.NewNop(), clockwork.NewRealClock(), 0)

	c := createRoom(t, h)

	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(c.Code) {
		t.Fatalf("bad room code %q", c.Code)
	}
	if got := getRoom(t, h, c.Code); got != c.Session {
		t.Fatalf("GetRoom returned a different session")
	}

	reply := make(chan session.View, 1)
	c.Session.Inbox() <- session.GetView{Reply: reply}
	v := <-reply
	if len(v.State.Players) != 1 || !v.State.Players[0].IsHost {
		t.Fatalf("host not seated: %+v", v.State.Players)
	}
	if len(v.State.Levels) != initialBoardSize {
		t.Fatalf("board: got %d levels, want %d", len(v.State.Levels), initialBoardSize)
	}
}

func TestGetRoom_UnknownCodeIsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := New(ctx, zap.NewNop(), clockwork.NewRealClock(), 0)

	if s := getRoom(t, h, "NOPE00"); s != nil {
		t.Fatalf("expected nil for unknown code")
	}
}

func TestRemoveRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := New(ctx, zap.NewNop(), clockwork.NewRealClock(), 0)

	c := createRoom(t, h)
	h.Inbox() <- RemoveRoom{Code: c.Code}

	if s := getRoom(t, h, c.Code); s != nil {
		t.Fatalf("room still present after removal")
	}
}

func TestReaper_CollectsIdleRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := clockwork.NewFakeClock()
	h := New(ctx, zap.NewNop(), clock, time.Minute)

	c := createRoom(t, h)

	// Wait for the reaper to arm its ticker, then jump past the window.
	clock.BlockUntil(1)
	clock.Advance(2 * time.Minute)

	deadline := time.After(2 * time.Second)
	for {
		if getRoom(t, h, c.Code) == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("idle room not reaped")
		case <-time.After(10 * time.Millisecond):
		}
	}

	select {
	case <-c.Session.Done():
	case <-time.After(time.Second):
		t.Fatalf("reaped session not shut down")
	}
}
