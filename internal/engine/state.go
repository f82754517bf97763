package engine

import "github.com/fortuna-game/fortuna-backend/internal/levels"

// Game constants mirrored by the front end.
const (
	StartingCapital = 50_000
	WinningCapital  = 1_000_000

	// Turns of tax exemption granted by insurance or an auction win.
	ExemptionGrant = 3

	MaxPlayers = 6
	MinPlayers = 2
)

type Avatar string

const (
	AvatarMale   Avatar = "male"
	AvatarFemale Avatar = "female"
	AvatarRobot  Avatar = "robot"
)

type PlayerStatus string

const (
	StatusPlaying PlayerStatus = "playing"
	StatusWaiting PlayerStatus = "waiting"
	StatusJail    PlayerStatus = "jail"
)

type SessionStatus string

const (
	SessionWaiting  SessionStatus = "waiting"
	SessionStarting SessionStatus = "starting"
	SessionPlaying  SessionStatus = "playing"
	SessionEnded    SessionStatus = "ended"
	SessionFinished SessionStatus = "finished"
)

type Mode string

const (
	ModeFinance        Mode = "finance"
	ModeSustainability Mode = "sustainability"
)

// Stats accumulates per-player counters shown on the winner screen.
type Stats struct {
	QuizCorrect      int `json:"quizCorrect"`
	QuizWrong        int `json:"quizWrong"`
	ListedItems      int `json:"listedItems"`
	InvestmentGains  int `json:"investmentGains"`
	InvestmentLosses int `json:"investmentLosses"`
	JailVisits       int `json:"jailVisits"`
	JailSkips        int `json:"jailSkips"`
	AuctionWins      int `json:"auctionWins"`
	TaxesPaid        int `json:"taxesPaid"`
}

// Player is one seat in a session. Owned by the session's State; clients
// never mutate their own copy, they request mutations via actions.
type Player struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Avatar         Avatar       `json:"avatar"`
	Capital        int          `json:"capital"`
	Position       int          `json:"position"`
	IsHost         bool         `json:"isHost"`
	Status         PlayerStatus `json:"status"`
	TaxExemptTurns int          `json:"taxExemptTurns"`
	HasPaidTax     bool         `json:"hasPaidTax"`
	IsInteracting  bool         `json:"isInteracting"`
	// JailSkipped marks a turn deliberately forfeited while jailed; it
	// gates the one-round-delayed auto-release.
	JailSkipped bool  `json:"jailSkipped"`
	Stats       Stats `json:"stats"`
}

// NewPlayer builds a seat with the starting balance.
func NewPlayer(id, name string, avatar Avatar, host bool) Player {
	return Player{
		ID:      id,
		Name:    name,
		Avatar:  avatar,
		Capital: StartingCapital,
		IsHost:  host,
		Status:  StatusWaiting,
	}
}

// Auction is the nested roll-off contest. It has its own turn order,
// independent of the main turn pointer.
type Auction struct {
	Active    bool           `json:"active"`
	Rolls     map[string]int `json:"rolls"`
	TurnIndex int            `json:"turnIndex"`
}

// State is the authoritative session snapshot. It lives on the host
// side only; everyone else holds a read-only mirror replaced wholesale.
type State struct {
	RoomID           string         `json:"roomId"`
	Players          []Player       `json:"players"`
	CurrentTurnIndex int            `json:"currentTurnIndex"`
	Status           SessionStatus  `json:"status"`
	Mode             Mode           `json:"mode"`
	Auction          Auction        `json:"auction"`
	TaxPool          int            `json:"taxPool"`
	Levels           []levels.Level `json:"levels"`
}

// NewState seeds a room with its host as sole participant.
func NewState(roomID string, host Player, board []levels.Level) State {
	return State{
		RoomID:  roomID,
		Players: []Player{host},
		Status:  SessionWaiting,
		Mode:    ModeFinance,
		Auction: Auction{Rolls: map[string]int{}},
		Levels:  board,
	}
}

// PlayerIndex returns the seat index for id, or -1.
func (s *State) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) playerByID(id string) *Player {
	if i := s.PlayerIndex(id); i >= 0 {
		return &s.Players[i]
	}
	return nil
}

// Host returns the seat holding the host flag, or nil. Exactly one seat
// has it for the lifetime of a session.
func (s *State) Host() *Player {
	for i := range s.Players {
		if s.Players[i].IsHost {
			return &s.Players[i]
		}
	}
	return nil
}

// Clone deep-copies the state so a snapshot handed to another goroutine
// never shares backing arrays with the live copy.
func (s *State) Clone() State {
	c := *s
	c.Players = append([]Player(nil), s.Players...)
	c.Levels = append([]levels.Level(nil), s.Levels...)
	if s.Auction.Rolls != nil {
		c.Auction.Rolls = make(map[string]int, len(s.Auction.Rolls))
		for id, r := range s.Auction.Rolls {
			c.Auction.Rolls[id] = r
		}
	}
	return c
}

// Terminal reports whether the session status can no longer change.
func (s *State) Terminal() bool {
	return s.Status == SessionEnded || s.Status == SessionFinished
}
