package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type SessionView struct {
	SessionID string   `json:"session_id"`
	Progress  Progress `json:"progress"`
}

type Service struct {
	deck     *Deck
	sessions SessionStore
	leads    LeadRepository
	logger   *zap.Logger
	observer Observer
	persist  PersistPolicy

	now   func() time.Time
	newID func() string

	// sentResults remembers the winner whose remote write is in flight or
	// done, per session. Entries are dropped when that write gives up.
	sentResults *lru.Cache[string, Label]

	pending sync.WaitGroup
}

type Option func(*Service)

// WithLeadRepository enables best-effort writes to the remote datastore.
func WithLeadRepository(leads LeadRepository) Option {
	return func(s *Service) {
		s.leads = leads
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func WithPersistPolicy(policy PersistPolicy) Option {
	return func(s *Service) {
		s.persist = policy.withDefaults()
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

const sentResultsSize = 10000

func NewService(deck *Deck, sessions SessionStore, opts ...Option) *Service {
	// lru.New only fails for a non-positive size.
	sentResults, _ := lru.New[string, Label](sentResultsSize)
	service := &Service{
		deck:     deck,
		sessions: sessions,
		logger:   zap.NewNop(),
		observer: nopObserver{},
		persist:  PersistPolicy{}.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,

		sentResults: sentResults,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) Deck() *Deck {
	return s.deck
}

// StartSession validates the contact form and opens a fresh quiz session.
// The session store write must succeed; the remote lead write is best-effort.
func (s *Service) StartSession(ctx context.Context, contact Contact) (SessionView, error) {
	normalized, err := NormalizeContact(contact)
	if err != nil {
		return SessionView{}, err
	}

	now := s.now()
	record := SessionRecord{
		SessionID: s.newID(),
		Contact:   normalized,
		Decisions: []Decision{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.SaveSession(ctx, record); err != nil {
		return SessionView{}, err
	}

	s.observer.SessionStarted()
	s.logger.Info("session started",
		zap.String("session_id", record.SessionID),
		zap.String("deck", s.deck.Name),
	)

	s.persistAsync("save_lead", func(ctx context.Context) error {
		return s.leads.SaveLead(ctx, record.SessionID, normalized, now)
	}, nil)

	return SessionView{
		SessionID: record.SessionID,
		Progress:  NewSession(s.deck).Progress(),
	}, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (SessionView, error) {
	_, session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{SessionID: sessionID, Progress: session.Progress()}, nil
}

func (s *Service) Decide(ctx context.Context, sessionID string, promptID int, accepted bool) (SessionView, error) {
	record, session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}

	progress, err := session.Decide(promptID, accepted)
	if err != nil {
		return SessionView{}, err
	}

	record.Decisions = session.Decisions()
	record.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, record); err != nil {
		return SessionView{}, err
	}

	s.observer.DecisionRecorded(accepted)
	s.logger.Debug("decision recorded",
		zap.String("session_id", sessionID),
		zap.Int("prompt_id", promptID),
		zap.Bool("accepted", accepted),
		zap.Int("decided", progress.Decided),
	)

	return SessionView{SessionID: sessionID, Progress: progress}, nil
}

func (s *Service) ResetSession(ctx context.Context, sessionID string) (SessionView, error) {
	record, session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}

	session.Reset()
	record.Decisions = []Decision{}
	record.Winner = ""
	record.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, record); err != nil {
		return SessionView{}, err
	}

	s.sentResults.Remove(sessionID)
	s.observer.SessionReset()
	s.logger.Info("session reset", zap.String("session_id", sessionID))
	return SessionView{SessionID: sessionID, Progress: session.Progress()}, nil
}

// Result computes the winning profile of a completed session and hands it to
// the session store and, best-effort, to the remote datastore.
func (s *Service) Result(ctx context.Context, sessionID string) (Outcome, error) {
	record, session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := session.Result()
	if err != nil {
		return Outcome{}, err
	}

	if record.Winner != outcome.Winner {
		record.Winner = outcome.Winner
		record.UpdatedAt = s.now()
		if err := s.sessions.SaveSession(ctx, record); err != nil {
			// The outcome is already computed; a failed bookkeeping write must not hide it.
			s.logger.Warn("failed to store session result",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}

		s.observer.ResultComputed(outcome.Winner)
		s.logger.Info("session completed",
			zap.String("session_id", sessionID),
			zap.String("winner", string(outcome.Winner)),
		)
	}

	s.sendResult(record, outcome)
	return outcome, nil
}

// sendResult writes the outcome to the remote datastore unless the same
// winner is already stored or on its way. A write that gives up is sent
// again by the next Result call.
func (s *Service) sendResult(record SessionRecord, outcome Outcome) {
	if s.leads == nil {
		return
	}
	if winner, ok := s.sentResults.Get(record.SessionID); ok && winner == outcome.Winner {
		return
	}
	s.sentResults.Add(record.SessionID, outcome.Winner)

	result := ResultRecord{
		SessionID:   record.SessionID,
		Email:       record.Contact.Email,
		Winner:      outcome.Winner,
		Scores:      outcome.Scores,
		CompletedAt: record.UpdatedAt,
	}
	s.persistAsync("save_result", func(ctx context.Context) error {
		return s.leads.SaveResult(ctx, result)
	}, func() {
		if winner, ok := s.sentResults.Peek(result.SessionID); ok && winner == result.Winner {
			s.sentResults.Remove(result.SessionID)
		}
	})
}

func (s *Service) Profile(label Label) (Profile, bool) {
	return s.deck.Profile(label)
}

// LookupLead reads a stored lead from the remote datastore.
func (s *Service) LookupLead(ctx context.Context, email string) (LeadRecord, error) {
	if s.leads == nil {
		return LeadRecord{}, errors.New("lead datastore is not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return LeadRecord{}, ErrLeadNotFound
	}
	return s.leads.GetLead(ctx, email)
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (SessionRecord, *Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionRecord{}, nil, ErrSessionNotFound
	}

	record, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return SessionRecord{}, nil, err
	}

	session, err := RestoreSession(s.deck, record.Decisions)
	if err != nil {
		return SessionRecord{}, nil, err
	}
	return record, session, nil
}
