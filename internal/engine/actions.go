package engine

import "github.com/fortuna-game/fortuna-backend/internal/levels"

type ActionKind string

const (
	ActStartGame        ActionKind = "StartGame"
	ActDiceRoll         ActionKind = "DiceRoll"
	ActQuizResult       ActionKind = "QuizResult"
	ActListingResult    ActionKind = "ListingResult"
	ActJailWait         ActionKind = "JailWait"
	ActJailSkip         ActionKind = "JailSkip"
	ActJailPay          ActionKind = "JailPay"
	ActTaxPay           ActionKind = "TaxPay"
	ActTaxCollect       ActionKind = "TaxCollect"
	ActInvest           ActionKind = "Invest"
	ActInsuranceBuy     ActionKind = "InsuranceBuy"
	ActThemeSwitch      ActionKind = "ThemeSwitch"
	ActAuctionStart     ActionKind = "AuctionStart"
	ActAuctionRoll      ActionKind = "AuctionRoll"
	ActAuctionEnd       ActionKind = "AuctionEnd"
	ActInteractionStart ActionKind = "InteractionStart"
	ActInteractionEnd   ActionKind = "InteractionEnd"
	ActTaxExempt        ActionKind = "TaxExempt"
	ActUpdateLevels     ActionKind = "UpdateLevels"
)

// Action is the flattened command union; each kind reads only the
// fields its handler needs.
type Action struct {
	Kind ActionKind

	Steps   int     // DiceRoll
	Success bool    // QuizResult, ListingResult
	Reward  int     // QuizResult, ListingResult
	Penalty int     // QuizResult, ListingResult
	Count   int     // ListingResult
	Amount  int     // TaxPay, TaxCollect (per player)
	Fine    int     // JailPay
	Stake   int     // Invest
	Result  float64 // Invest payout multiplier
	Cost    int     // InsuranceBuy
	Mode    Mode    // ThemeSwitch
	Roll    int     // AuctionRoll
	Turns   int     // TaxExempt
	Target  string  // TaxExempt (optional)
	Targets []string

	Levels []levels.Level // UpdateLevels
}

// turnGateExempt holds the action kinds allowed regardless of whose
// turn it is: asynchronous side channels (the auction has its own
// internal order) or purely informational updates.
var turnGateExempt = map[ActionKind]bool{
	ActStartGame:        true, // host-gated instead
	ActAuctionRoll:      true,
	ActAuctionEnd:       true,
	ActInteractionStart: true,
	ActInteractionEnd:   true,
	ActUpdateLevels:     true,
}
