package quiz

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScorerApplyAccepted(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B", "C"})
	prompt := Prompt{ID: 1, Like: "A", Dislike: []Label{"B", "C"}}

	if err := scorer.Apply(prompt, true); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := ScoreBoard{"A": 1, "B": 0, "C": 0}
	if diff := cmp.Diff(want, scorer.Scores()); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestScorerApplyRejected(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B", "C"})
	prompt := Prompt{ID: 1, Like: "A", Dislike: []Label{"B", "C"}}

	if err := scorer.Apply(prompt, false); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := ScoreBoard{"A": 0, "B": 0.5, "C": 0.5}
	if diff := cmp.Diff(want, scorer.Scores()); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestScorerApplyIsNotIdempotent(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B"})
	prompt := Prompt{ID: 1, Like: "B", Dislike: []Label{"A"}}

	for i := 0; i < 2; i++ {
		if err := scorer.Apply(prompt, true); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}
	if got := scorer.Score("B"); got != 2 {
		t.Fatalf("score B = %v, want 2", got)
	}
}

func TestScorerApplyUnknownLabelLeavesBoardUntouched(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B"})

	err := scorer.Apply(Prompt{ID: 7, Like: "Z"}, true)
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}

	err = scorer.Apply(Prompt{ID: 8, Like: "A", Dislike: []Label{"B", "Z"}}, false)
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}

	want := ScoreBoard{"A": 0, "B": 0}
	if diff := cmp.Diff(want, scorer.Scores()); diff != "" {
		t.Fatalf("board changed by failed apply (-want +got):\n%s", diff)
	}
}

func TestScorerWinnerTieGoesToFirstDeclared(t *testing.T) {
	scorer := NewScorer([]Label{"X", "Y", "Z"})
	prompts := []struct {
		prompt   Prompt
		accepted bool
	}{
		{Prompt{ID: 1, Like: "Y"}, true},
		{Prompt{ID: 2, Like: "Y"}, true},
		{Prompt{ID: 3, Like: "X"}, true},
		{Prompt{ID: 4, Like: "Z", Dislike: []Label{"X"}}, false},
		{Prompt{ID: 5, Like: "Z", Dislike: []Label{"X"}}, false},
	}
	for _, item := range prompts {
		if err := scorer.Apply(item.prompt, item.accepted); err != nil {
			t.Fatalf("Apply(%d) failed: %v", item.prompt.ID, err)
		}
	}

	if scorer.Score("X") != 2 || scorer.Score("Y") != 2 {
		t.Fatalf("expected X and Y tied at 2, got %+v", scorer.Scores())
	}
	if got := scorer.Winner(); got != "X" {
		t.Fatalf("Winner() = %q, want X", got)
	}
}

func TestScorerWinnerWithoutAppliesIsFirstDeclared(t *testing.T) {
	scorer := NewScorer([]Label{"Boris BI", "Emma Excel"})
	if got := scorer.Winner(); got != "Boris BI" {
		t.Fatalf("Winner() = %q, want Boris BI", got)
	}
}

func TestScorerResetThenWinner(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B", "C"})
	if err := scorer.Apply(Prompt{ID: 1, Like: "C"}, true); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := scorer.Winner(); got != "C" {
		t.Fatalf("Winner() before reset = %q, want C", got)
	}

	scorer.Reset()

	if got := scorer.Winner(); got != "A" {
		t.Fatalf("Winner() after reset = %q, want A", got)
	}
	if diff := cmp.Diff(ScoreBoard{"A": 0, "B": 0, "C": 0}, scorer.Scores()); diff != "" {
		t.Fatalf("scores after reset (-want +got):\n%s", diff)
	}
}

func TestScorerWinnerIsDeterministic(t *testing.T) {
	deck := mustBuiltinDeck(t)
	decisions := []bool{false, true, false, true, false, true, false}

	var winners []Label
	for run := 0; run < 5; run++ {
		scorer := NewScorer(deck.Labels())
		for idx, prompt := range deck.Prompts() {
			if err := scorer.Apply(prompt, decisions[idx]); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
		}
		winners = append(winners, scorer.Winner())
	}

	for _, winner := range winners[1:] {
		if winner != winners[0] {
			t.Fatalf("non-deterministic winners: %v", winners)
		}
	}
}

func TestScorerRankedKeepsDeclarationOrderForTies(t *testing.T) {
	scorer := NewScorer([]Label{"A", "B", "C", "D"})
	_ = scorer.Apply(Prompt{ID: 1, Like: "C"}, true)
	_ = scorer.Apply(Prompt{ID: 2, Like: "A", Dislike: []Label{"B", "D"}}, false)

	want := []RankedLabel{
		{Label: "C", Score: 1},
		{Label: "B", Score: 0.5},
		{Label: "D", Score: 0.5},
		{Label: "A", Score: 0},
	}
	if diff := cmp.Diff(want, scorer.Ranked()); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}
