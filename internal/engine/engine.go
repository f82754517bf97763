// Package engine is the authoritative state machine for a session: the
// turn-authority gate, one handler per action kind, and the win latch.
// It is pure and synchronous; the session actor serializes all calls,
// so no locking happens here.
package engine

import (
	"errors"

	"github.com/fortuna-game/fortuna-backend/internal/levels"
)

var (
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrWrongTurn         = errors.New("not this player's turn")
	ErrNotHost           = errors.New("host-only action")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrAuctionInactive   = errors.New("no auction in progress")
	ErrAuctionClosed     = errors.New("auction already resolved")
	ErrAuctionWrongTurn  = errors.New("not this player's auction roll")
	ErrUnsupportedAction = errors.New("unsupported action")
)

// Apply validates and executes one action against the state. On error
// the state is left untouched and the caller is expected to log and
// drop the action; a bad message must never take the room down.
//
// Every successful mutation is followed by the unconditional win scan,
// so a late action can never leave the terminal flag unset.
func Apply(s *State, senderID string, a Action) error {
	idx := s.PlayerIndex(senderID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if !turnGateExempt[a.Kind] && idx != s.CurrentTurnIndex {
		return ErrWrongTurn
	}

	p := &s.Players[idx]

	switch a.Kind {
	case ActStartGame:
		if !p.IsHost {
			return ErrNotHost
		}
		if len(s.Players) < MinPlayers {
			return ErrNotEnoughPlayers
		}
		s.Status = SessionPlaying
		for i := range s.Players {
			s.Players[i].Status = StatusPlaying
		}

	case ActDiceRoll:
		p.Position += a.Steps
		if p.TaxExemptTurns > 0 {
			p.TaxExemptTurns--
		}
		// Landing on the auction field triggers the roll-off for
		// everyone, but only on the finance track.
		if s.Mode == ModeFinance && fieldAt(s.Levels, p.Position) == levels.FieldAuctionInsurance {
			s.Auction = Auction{Active: true, Rolls: map[string]int{}}
		}

	case ActQuizResult:
		if a.Success {
			p.Capital += a.Reward
			p.Stats.QuizCorrect++
		} else {
			p.Capital -= a.Penalty
			p.Stats.QuizWrong++
		}

	case ActListingResult:
		if a.Success {
			p.Capital += a.Reward
			p.Stats.ListedItems += a.Count
		} else {
			p.Capital -= a.Penalty
		}

	case ActJailWait:
		p.Status = StatusJail
		p.JailSkipped = false
		p.Stats.JailVisits++

	case ActJailSkip:
		p.JailSkipped = true
		p.IsInteracting = false
		p.Stats.JailSkips++
		advanceTurn(s)

	case ActJailPay:
		p.Capital -= a.Fine
		p.Status = StatusPlaying
		p.JailSkipped = false
		s.TaxPool += a.Fine

	case ActTaxPay:
		p.Capital -= a.Amount
		p.HasPaidTax = true
		p.Stats.TaxesPaid++
		s.TaxPool += a.Amount

	case ActTaxCollect:
		for _, id := range a.Targets {
			t := s.playerByID(id)
			if t == nil || t.TaxExemptTurns > 0 {
				continue
			}
			t.Capital -= a.Amount
			t.Stats.TaxesPaid++
			p.Capital += a.Amount
		}

	case ActInvest:
		payout := int(float64(a.Stake) * a.Result)
		p.Capital -= a.Stake
		p.Capital += payout
		if payout > a.Stake {
			p.Stats.InvestmentGains++
		} else {
			p.Stats.InvestmentLosses++
		}

	case ActInsuranceBuy:
		p.Capital -= a.Cost
		p.TaxExemptTurns = ExemptionGrant

	case ActThemeSwitch:
		s.Mode = a.Mode

	case ActAuctionStart:
		s.Auction = Auction{Active: true, Rolls: map[string]int{}}

	case ActAuctionRoll:
		return applyAuctionRoll(s, senderID, a.Roll)

	case ActAuctionEnd:
		s.Auction.Active = false
		// Safety net: a dangling modal on any client must not wedge the
		// room, so every interacting flag is cleared, not just the sender's.
		for i := range s.Players {
			s.Players[i].IsInteracting = false
		}
		advanceTurn(s)

	case ActInteractionStart:
		p.IsInteracting = true

	case ActInteractionEnd:
		p.IsInteracting = false
		advanceTurn(s)

	case ActTaxExempt:
		target := p
		if a.Target != "" {
			if t := s.playerByID(a.Target); t != nil {
				target = t
			}
		}
		target.TaxExemptTurns = a.Turns

	case ActUpdateLevels:
		s.Levels = a.Levels

	default:
		return ErrUnsupportedAction
	}

	checkWin(s)
	return nil
}

// applyAuctionRoll enforces the auction's internal turn order and
// resolves the contest exactly once, when the last roll lands.
func applyAuctionRoll(s *State, senderID string, roll int) error {
	if !s.Auction.Active {
		return ErrAuctionInactive
	}
	n := len(s.Players)
	if s.Auction.TurnIndex >= n {
		return ErrAuctionClosed
	}
	if s.Players[s.Auction.TurnIndex%n].ID != senderID {
		return ErrAuctionWrongTurn
	}
	if _, dup := s.Auction.Rolls[senderID]; dup {
		return ErrAuctionClosed
	}

	if s.Auction.Rolls == nil {
		s.Auction.Rolls = map[string]int{}
	}
	s.Auction.Rolls[senderID] = roll
	s.Auction.TurnIndex++

	if s.Auction.TurnIndex >= n {
		resolveAuction(s)
	}

	checkWin(s)
	return nil
}

// resolveAuction grants the exemption to every holder of the maximum
// roll. Ties all win.
func resolveAuction(s *State) {
	max := 0
	for _, r := range s.Auction.Rolls {
		if r > max {
			max = r
		}
	}
	for i := range s.Players {
		if r, ok := s.Auction.Rolls[s.Players[i].ID]; ok && r == max {
			s.Players[i].TaxExemptTurns = ExemptionGrant
			s.Players[i].Stats.AuctionWins++
		}
	}
}

// advanceTurn moves the turn pointer one seat forward and applies the
// single jail-release rule: a jailed seat that already forfeited a turn
// is released as the pointer reaches it. Shared by interaction-end,
// jail-skip and auction-end so the release conditional cannot drift.
func advanceTurn(s *State) {
	n := len(s.Players)
	if n == 0 {
		return
	}
	next := (s.CurrentTurnIndex + 1) % n
	p := &s.Players[next]
	if p.Status == StatusJail && p.JailSkipped {
		p.Status = StatusPlaying
		p.JailSkipped = false
	}
	s.CurrentTurnIndex = next
}

// checkWin latches the terminal status once any capital crosses the
// threshold. One-way: a finished session never reverts.
func checkWin(s *State) {
	if s.Terminal() {
		return
	}
	for i := range s.Players {
		if s.Players[i].Capital >= WinningCapital {
			s.Status = SessionFinished
			return
		}
	}
}

func fieldAt(board []levels.Level, pos int) levels.FieldType {
	if pos < 0 || pos >= len(board) {
		return ""
	}
	return board[pos].Type
}
