package levels

import "testing"

func TestGenerate_StartsBoardWithStartField(t *testing.T) {
	board := Generate(60, 0, "")

	if len(board) != 60 {
		t.Fatalf("length: got %d, want 60", len(board))
	}
	if board[0].Type != FieldStart || board[0].ID != 0 {
		t.Fatalf("first field: %+v", board[0])
	}
	for i := 1; i < len(board); i++ {
		if board[i].Type == FieldStart {
			t.Fatalf("START appears again at %d", i)
		}
	}
}

func TestGenerate_NoAdjacentDuplicates(t *testing.T) {
	board := Generate(200, 0, "")
	for i := 1; i < len(board); i++ {
		if board[i].Type == board[i-1].Type {
			t.Fatalf("adjacent duplicates at %d: %s", i, board[i].Type)
		}
	}
}

func TestGenerate_ContiguousIDs(t *testing.T) {
	board := Generate(50, 0, "")
	for i, lvl := range board {
		if lvl.ID != i {
			t.Fatalf("id at %d: got %d", i, lvl.ID)
		}
	}
}

func TestExtend_ContinuesIDsAndAdjacencyRule(t *testing.T) {
	board := Generate(30, 0, "")
	extended := Extend(board, 40)

	if len(extended) != 70 {
		t.Fatalf("length: got %d, want 70", len(extended))
	}
	for i := 1; i < len(extended); i++ {
		if extended[i].ID != extended[i-1].ID+1 {
			t.Fatalf("ids not contiguous at %d", i)
		}
		if extended[i].Type == extended[i-1].Type {
			t.Fatalf("adjacent duplicates across seam at %d", i)
		}
	}
}

func TestGenerate_CarriesMetadata(t *testing.T) {
	board := Generate(100, 0, "")
	for _, lvl := range board {
		if lvl.Label == "" || lvl.Icon == "" {
			t.Fatalf("missing metadata for %s", lvl.Type)
		}
	}
}
