package quiz

import (
	"fmt"
	"sort"
)

const (
	likeWeight    = 1.0
	dislikeWeight = 0.5
)

// ScoreBoard maps every declared label to its running score.
type ScoreBoard map[Label]float64

// Scorer tallies decisions against a closed label set. Scores are kept in
// declaration order so ties resolve to the first-declared label.
type Scorer struct {
	labels []Label
	index  map[Label]int
	scores []float64
}

func NewScorer(labels []Label) *Scorer {
	scorer := &Scorer{
		labels: append([]Label(nil), labels...),
		index:  make(map[Label]int, len(labels)),
		scores: make([]float64, len(labels)),
	}
	for idx, label := range scorer.labels {
		if _, exists := scorer.index[label]; !exists {
			scorer.index[label] = idx
		}
	}
	return scorer
}

// Apply adds one decision to the tally. It is not idempotent: applying the
// same prompt twice counts it twice.
func (s *Scorer) Apply(prompt Prompt, accepted bool) error {
	if accepted {
		idx, ok := s.index[prompt.Like]
		if !ok {
			return fmt.Errorf("prompt %d like %q: %w", prompt.ID, prompt.Like, ErrUnknownLabel)
		}
		s.scores[idx] += likeWeight
		return nil
	}

	// Resolve every label before mutating so a bad prompt leaves the board untouched.
	targets := make([]int, 0, len(prompt.Dislike))
	for _, label := range prompt.Dislike {
		idx, ok := s.index[label]
		if !ok {
			return fmt.Errorf("prompt %d dislike %q: %w", prompt.ID, label, ErrUnknownLabel)
		}
		targets = append(targets, idx)
	}
	for _, idx := range targets {
		s.scores[idx] += dislikeWeight
	}
	return nil
}

// Winner returns the highest scoring label. Ties, including the all-zero
// board, go to the label declared first.
func (s *Scorer) Winner() Label {
	if len(s.labels) == 0 {
		return ""
	}

	best := 0
	for idx := 1; idx < len(s.scores); idx++ {
		if s.scores[idx] > s.scores[best] {
			best = idx
		}
	}
	return s.labels[best]
}

func (s *Scorer) Reset() {
	for idx := range s.scores {
		s.scores[idx] = 0
	}
}

func (s *Scorer) Score(label Label) float64 {
	idx, ok := s.index[label]
	if !ok {
		return 0
	}
	return s.scores[idx]
}

// Scores returns a copy of the board.
func (s *Scorer) Scores() ScoreBoard {
	board := make(ScoreBoard, len(s.labels))
	for idx, label := range s.labels {
		board[label] = s.scores[idx]
	}
	return board
}

// Ranked returns labels ordered by score descending, ties in declaration order.
func (s *Scorer) Ranked() []RankedLabel {
	ranked := make([]RankedLabel, 0, len(s.labels))
	for idx, label := range s.labels {
		ranked = append(ranked, RankedLabel{Label: label, Score: s.scores[idx]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

type RankedLabel struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}
