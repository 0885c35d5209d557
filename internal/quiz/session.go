package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfSequence     = errors.New("decision does not match the next prompt")
	ErrSessionComplete   = errors.New("all prompts already decided")
	ErrSessionIncomplete = errors.New("session has undecided prompts")
)

type Decision struct {
	PromptID int  `json:"prompt_id"`
	Accepted bool `json:"accepted"`
}

type Progress struct {
	Decided  int     `json:"decided"`
	Total    int     `json:"total"`
	Next     *Prompt `json:"next,omitempty"`
	Complete bool    `json:"complete"`
}

type Outcome struct {
	Winner  Label         `json:"winner"`
	Profile Profile       `json:"profile"`
	Scores  ScoreBoard    `json:"scores"`
	Ranked  []RankedLabel `json:"ranked"`
}

// Session walks one visitor through a deck. Decisions are only accepted for
// the next prompt in traversal order, so every prompt is applied to the scorer
// exactly once.
type Session struct {
	deck      *Deck
	decisions []Decision
	scorer    *Scorer
}

func NewSession(deck *Deck) *Session {
	return &Session{
		deck:      deck,
		decisions: make([]Decision, 0, deck.Len()),
		scorer:    NewScorer(deck.Labels()),
	}
}

// RestoreSession rebuilds a session by replaying stored decisions.
func RestoreSession(deck *Deck, decisions []Decision) (*Session, error) {
	session := NewSession(deck)
	for idx, decision := range decisions {
		if _, err := session.Decide(decision.PromptID, decision.Accepted); err != nil {
			return nil, fmt.Errorf("replay decision %d: %w", idx, err)
		}
	}
	return session, nil
}

func (s *Session) Next() (Prompt, bool) {
	return s.deck.PromptAt(len(s.decisions))
}

func (s *Session) Decide(promptID int, accepted bool) (Progress, error) {
	next, ok := s.Next()
	if !ok {
		return s.Progress(), ErrSessionComplete
	}
	if next.ID != promptID {
		return s.Progress(), fmt.Errorf("got prompt %d, expected %d: %w", promptID, next.ID, ErrOutOfSequence)
	}

	if err := s.scorer.Apply(next, accepted); err != nil {
		return s.Progress(), err
	}
	s.decisions = append(s.decisions, Decision{PromptID: promptID, Accepted: accepted})
	return s.Progress(), nil
}

func (s *Session) Progress() Progress {
	progress := Progress{
		Decided:  len(s.decisions),
		Total:    s.deck.Len(),
		Complete: s.Complete(),
	}
	if next, ok := s.Next(); ok {
		progress.Next = &next
	}
	return progress
}

func (s *Session) Complete() bool {
	return len(s.decisions) >= s.deck.Len()
}

func (s *Session) Result() (Outcome, error) {
	if !s.Complete() {
		return Outcome{}, ErrSessionIncomplete
	}

	winner := s.scorer.Winner()
	profile, _ := s.deck.Profile(winner)
	return Outcome{
		Winner:  winner,
		Profile: profile,
		Scores:  s.scorer.Scores(),
		Ranked:  s.scorer.Ranked(),
	}, nil
}

// Reset starts the deck over.
func (s *Session) Reset() {
	s.decisions = s.decisions[:0]
	s.scorer.Reset()
}

func (s *Session) Decisions() []Decision {
	return append([]Decision(nil), s.decisions...)
}

func (s *Session) Deck() *Deck {
	return s.deck
}
