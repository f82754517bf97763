package levels

import "math/rand"

// FieldType classifies a board field. The field a player lands on decides
// which interaction the UI opens; the sync core only cares that every
// participant sees an identical sequence.
type FieldType string

const (
	FieldStart            FieldType = "start"
	FieldIncome           FieldType = "income"
	FieldExpense          FieldType = "expense"
	FieldQuiz             FieldType = "quiz"
	FieldListing          FieldType = "listing"
	FieldJail             FieldType = "jail"
	FieldSwitch           FieldType = "switch"
	FieldInvestment       FieldType = "investment"
	FieldTaxSmall         FieldType = "tax_small"
	FieldTaxLarge         FieldType = "tax_large"
	FieldAuctionInsurance FieldType = "auction_insurance"
)

// Level is one board field. Presentation (colors, animation) is the
// front end's problem; id and type are what the shared state carries.
type Level struct {
	ID    int       `json:"id"`
	Type  FieldType `json:"type"`
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
}

// Weighted pool: income dominates, the rarer field types appear once.
var fieldPool = []FieldType{
	FieldIncome, FieldIncome, FieldIncome, FieldIncome, FieldIncome,
	FieldExpense,
	FieldQuiz, FieldQuiz,
	FieldListing,
	FieldInvestment,
	FieldSwitch,
	FieldJail,
	FieldTaxSmall, FieldTaxSmall,
	FieldTaxLarge,
	FieldAuctionInsurance,
}

type meta struct {
	label string
	icon  string
}

var fieldMeta = map[FieldType]meta{
	FieldStart:            {"START", "🚀"},
	FieldIncome:           {"Income", "💰"},
	FieldExpense:          {"Expense", "💸"},
	FieldQuiz:             {"Quiz", "❓"},
	FieldListing:          {"Listing", "📝"},
	FieldJail:             {"Jail", "🚔"},
	FieldSwitch:           {"SWITCH", "🔄"},
	FieldInvestment:       {"Investment", "📊"},
	FieldTaxSmall:         {"Tax", "💸"},
	FieldTaxLarge:         {"Tax Collect", "🏦"},
	FieldAuctionInsurance: {"Auction", "⚖️"},
}

func newLevel(id int, t FieldType) Level {
	m := fieldMeta[t]
	return Level{ID: id, Type: t, Label: m.label, Icon: m.icon}
}

// Generate produces count levels starting at startID. A START field is
// emitted only at the very beginning of the board (startID 0). No two
// adjacent fields share a type; lastType carries the adjacency rule
// across calls when the board is extended.
func Generate(count int, startID int, lastType FieldType) []Level {
	out := make([]Level, 0, count)
	prev := lastType

	i := 0
	if startID == 0 {
		out = append(out, newLevel(0, FieldStart))
		prev = FieldStart
		i = 1
	}

	for ; i < count; i++ {
		t := fieldPool[rand.Intn(len(fieldPool))]
		for t == prev {
			t = fieldPool[rand.Intn(len(fieldPool))]
		}
		prev = t
		out = append(out, newLevel(startID+i, t))
	}

	return out
}

// Extend appends more levels to an existing board, continuing ids and
// respecting the adjacency rule across the seam.
func Extend(board []Level, count int) []Level {
	if len(board) == 0 {
		return Generate(count, 0, "")
	}
	last := board[len(board)-1]
	return append(board, Generate(count, last.ID+1, last.Type)...)
}
