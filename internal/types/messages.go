// Package types defines the wire protocol: a tagged-union JSON message
// per WebSocket text frame. Client→host messages carry a join request
// or one action; host→client messages carry the full state snapshot.
// Unknown tags are dropped by the receiver, never fatal.
package types

import (
	"github.com/fortuna-game/fortuna-backend/internal/engine"
	"github.com/fortuna-game/fortuna-backend/internal/levels"
)

// Client → host tags.
const (
	MsgJoinRequest      = "JOIN_REQUEST"
	MsgStartGame        = "START_GAME"
	MsgDiceRoll         = "ACTION_DICE_ROLL"
	MsgQuizResult       = "ACTION_QUIZ_RESULT"
	MsgListingResult    = "ACTION_LISTING_RESULT"
	MsgJailWait         = "ACTION_JAIL_WAIT"
	MsgJailSkip         = "ACTION_JAIL_SKIP"
	MsgJailPay          = "ACTION_JAIL_PAY"
	MsgTaxPay           = "ACTION_TAX_PAY"
	MsgTaxCollect       = "ACTION_TAX_COLLECT_FROM_PLAYERS"
	MsgInvest           = "ACTION_INVEST"
	MsgInsuranceBuy     = "ACTION_INSURANCE_BUY"
	MsgThemeSwitch      = "ACTION_THEME_SWITCH"
	MsgAuctionStart     = "ACTION_AUCTION_START"
	MsgAuctionRoll      = "ACTION_AUCTION_ROLL"
	MsgAuctionEnd       = "ACTION_AUCTION_END"
	MsgInteractionStart = "ACTION_INTERACTION_START"
	MsgInteractionEnd   = "ACTION_INTERACTION_END"
	MsgTaxExempt        = "ACTION_TAX_EXEMPT"
	MsgUpdateLevels     = "UPDATE_LEVELS"
)

// Host → client tags.
const (
	MsgStateUpdate = "STATE_UPDATE"
	MsgJoined      = "JOINED"
)

// ClientMessage is the flattened client→host union; each tag reads only
// its own fields.
type ClientMessage struct {
	Type string `json:"type"`

	Profile *engine.Player `json:"profile,omitempty"`

	Steps           int            `json:"steps,omitempty"`
	Success         bool           `json:"success,omitempty"`
	Reward          int            `json:"reward,omitempty"`
	Penalty         int            `json:"penalty,omitempty"`
	Count           int            `json:"count,omitempty"`
	Amount          int            `json:"amount,omitempty"`
	Fine            int            `json:"fine,omitempty"`
	Stake           int            `json:"stake,omitempty"`
	Result          float64        `json:"result,omitempty"`
	Cost            int            `json:"cost,omitempty"`
	Mode            engine.Mode    `json:"mode,omitempty"`
	Roll            int            `json:"roll,omitempty"`
	Turns           int            `json:"turns,omitempty"`
	PlayerID        string         `json:"playerId,omitempty"`
	Targets         []string       `json:"targets,omitempty"`
	AmountPerPlayer int            `json:"amountPerPlayer,omitempty"`
	Levels          []levels.Level `json:"levels,omitempty"`
}

// ServerMessage is the host→client union: a versioned full snapshot, or
// the join ack carrying the id the session registered.
type ServerMessage struct {
	Type     string        `json:"type"`
	Version  int           `json:"version,omitempty"`
	State    *engine.State `json:"state,omitempty"`
	PlayerID string        `json:"playerId,omitempty"`
	RoomID   string        `json:"roomId,omitempty"`
}

// ToAction converts a wire message to an engine action. The bool is
// false for the join request (handled by the session, not the engine)
// and for unknown tags, which the caller logs and drops.
func ToAction(m ClientMessage) (engine.Action, bool) {
	switch m.Type {
	case MsgStartGame:
		return engine.Action{Kind: engine.ActStartGame}, true
	case MsgDiceRoll:
		return engine.Action{Kind: engine.ActDiceRoll, Steps: m.Steps}, true
	case MsgQuizResult:
		return engine.Action{Kind: engine.ActQuizResult, Success: m.Success, Reward: m.Reward, Penalty: m.Penalty}, true
	case MsgListingResult:
		return engine.Action{Kind: engine.ActListingResult, Success: m.Success, Reward: m.Reward, Penalty: m.Penalty, Count: m.Count}, true
	case MsgJailWait:
		return engine.Action{Kind: engine.ActJailWait}, true
	case MsgJailSkip:
		return engine.Action{Kind: engine.ActJailSkip}, true
	case MsgJailPay:
		return engine.Action{Kind: engine.ActJailPay, Fine: m.Fine}, true
	case MsgTaxPay:
		return engine.Action{Kind: engine.ActTaxPay, Amount: m.Amount}, true
	case MsgTaxCollect:
		return engine.Action{Kind: engine.ActTaxCollect, Targets: m.Targets, Amount: m.AmountPerPlayer}, true
	case MsgInvest:
		return engine.Action{Kind: engine.ActInvest, Stake: m.Stake, Result: m.Result}, true
	case MsgInsuranceBuy:
		return engine.Action{Kind: engine.ActInsuranceBuy, Cost: m.Cost}, true
	case MsgThemeSwitch:
		return engine.Action{Kind: engine.ActThemeSwitch, Mode: m.Mode}, true
	case MsgAuctionStart:
		return engine.Action{Kind: engine.ActAuctionStart}, true
	case MsgAuctionRoll:
		return engine.Action{Kind: engine.ActAuctionRoll, Roll: m.Roll}, true
	case MsgAuctionEnd:
		return engine.Action{Kind: engine.ActAuctionEnd}, true
	case MsgInteractionStart:
		return engine.Action{Kind: engine.ActInteractionStart}, true
	case MsgInteractionEnd:
		return engine.Action{Kind: engine.ActInteractionEnd}, true
	case MsgTaxExempt:
		return engine.Action{Kind: engine.ActTaxExempt, Turns: m.Turns, Target: m.PlayerID}, true
	case MsgUpdateLevels:
		return engine.Action{Kind: engine.ActUpdateLevels, Levels: m.Levels}, true
	default:
		return engine.Action{}, false
	}
}

// FromAction is the client-side inverse of ToAction.
func FromAction(a engine.Action) (ClientMessage, bool) {
	switch a.Kind {
	case engine.ActStartGame:
		return ClientMessage{Type: MsgStartGame}, true
	case engine.ActDiceRoll:
		return ClientMessage{Type: MsgDiceRoll, Steps: a.Steps}, true
	case engine.ActQuizResult:
		return ClientMessage{Type: MsgQuizResult, Success: a.Success, Reward: a.Reward, Penalty: a.Penalty}, true
	case engine.ActListingResult:
		return ClientMessage{Type: MsgListingResult, Success: a.Success, Reward: a.Reward, Penalty: a.Penalty, Count: a.Count}, true
	case engine.ActJailWait:
		return ClientMessage{Type: MsgJailWait}, true
	case engine.ActJailSkip:
		return ClientMessage{Type: MsgJailSkip}, true
	case engine.ActJailPay:
		return ClientMessage{Type: MsgJailPay, Fine: a.Fine}, true
	case engine.ActTaxPay:
		return ClientMessage{Type: MsgTaxPay, Amount: a.Amount}, true
	case engine.ActTaxCollect:
		return ClientMessage{Type: MsgTaxCollect, Targets: a.Targets, AmountPerPlayer: a.Amount}, true
	case engine.ActInvest:
		return ClientMessage{Type: MsgInvest, Stake: a.Stake, Result: a.Result}, true
	case engine.ActInsuranceBuy:
		return ClientMessage{Type: MsgInsuranceBuy, Cost: a.Cost}, true
	case engine.ActThemeSwitch:
		return ClientMessage{Type: MsgThemeSwitch, Mode: a.Mode}, true
	case engine.ActAuctionStart:
		return ClientMessage{Type: MsgAuctionStart}, true
	case engine.ActAuctionRoll:
		return ClientMessage{Type: MsgAuctionRoll, Roll: a.Roll}, true
	case engine.ActAuctionEnd:
		return ClientMessage{Type: MsgAuctionEnd}, true
	case engine.ActInteractionStart:
		return ClientMessage{Type: MsgInteractionStart}, true
	case engine.ActInteractionEnd:
		return ClientMessage{Type: MsgInteractionEnd}, true
	case engine.ActTaxExempt:
		return ClientMessage{Type: MsgTaxExempt, Turns: a.Turns, PlayerID: a.Target}, true
	case engine.ActUpdateLevels:
		return ClientMessage{Type: MsgUpdateLevels, Levels: a.Levels}, true
	default:
		return ClientMessage{}, false
	}
}
