package types

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/fortuna-game/fortuna-backend/internal/engine"
)

func TestToAction_UnknownTagIsRejected(t *testing.T) {
	for _, tag := range []string{"", "ACTION_TELEPORT", MsgJoinRequest, MsgStateUpdate} {
		if _, ok := ToAction(ClientMessage{Type: tag}); ok {
			t.Fatalf("tag %q accepted", tag)
		}
	}
}

func TestToAction_CarriesHandlerFields(t *testing.T) {
	cases := []struct {
		name string
		msg  ClientMessage
		want engine.Action
	}{
		{
			"dice roll",
			ClientMessage{Type: MsgDiceRoll, Steps: 4},
			engine.Action{Kind: engine.ActDiceRoll, Steps: 4},
		},
		{
			"tax collect maps amount per player",
			ClientMessage{Type: MsgTaxCollect, Targets: []string{"a", "b"}, AmountPerPlayer: 35_000},
			engine.Action{Kind: engine.ActTaxCollect, Targets: []string{"a", "b"}, Amount: 35_000},
		},
		{
			"tax exempt maps optional target",
			ClientMessage{Type: MsgTaxExempt, Turns: 3, PlayerID: "p2"},
			engine.Action{Kind: engine.ActTaxExempt, Turns: 3, Target: "p2"},
		},
		{
			"invest",
			ClientMessage{Type: MsgInvest, Stake: 10_000, Result: 1.5},
			engine.Action{Kind: engine.ActInvest, Stake: 10_000, Result: 1.5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToAction(tc.msg)
			if !ok {
				t.Fatalf("rejected")
			}
			if got.Kind != tc.want.Kind || got.Steps != tc.want.Steps ||
				got.Amount != tc.want.Amount || got.Turns != tc.want.Turns ||
				got.Target != tc.want.Target || got.Stake != tc.want.Stake ||
				got.Result != tc.want.Result || len(got.Targets) != len(tc.want.Targets) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFromAction_InvertsToAction(t *testing.T) {
	actions := []engine.Action{
		{Kind: engine.ActStartGame},
		{Kind: engine.ActDiceRoll, Steps: 6},
		{Kind: engine.ActQuizResult, Success: true, Reward: 20_000},
		{Kind: engine.ActJailPay, Fine: 75_000},
		{Kind: engine.ActAuctionRoll, Roll: 5},
		{Kind: engine.ActThemeSwitch, Mode: engine.ModeSustainability},
	}

	for _, a := range actions {
		t.Run(string(a.Kind), func(t *testing.T) {
			cm, ok := FromAction(a)
			if !ok {
				t.Fatalf("no wire form")
			}
			back, ok := ToAction(cm)
			if !ok {
				t.Fatalf("wire form %q not accepted back", cm.Type)
			}
			if !reflect.DeepEqual(back, a) {
				t.Fatalf("round trip: got %+v, want %+v", back, a)
			}
		})
	}
}

func TestServerMessage_SnapshotSurvivesJSON(t *testing.T) {
	state := engine.NewState("AB12CD", engine.NewPlayer("h", "Host", engine.AvatarRobot, true), nil)
	state.TaxPool = 75_000

	payload, err := json.Marshal(ServerMessage{Type: MsgStateUpdate, Version: 7, State: &state})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got ServerMessage
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != MsgStateUpdate || got.Version != 7 {
		t.Fatalf("envelope: %+v", got)
	}
	if got.State == nil || got.State.RoomID != "AB12CD" || got.State.TaxPool != 75_000 {
		t.Fatalf("state: %+v", got.State)
	}
	if len(got.State.Players) != 1 || got.State.Players[0].Capital != engine.StartingCapital {
		t.Fatalf("players: %+v", got.State.Players)
	}
}
