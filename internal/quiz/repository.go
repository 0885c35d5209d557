package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLeadNotFound    = errors.New("lead not found")
)

// SessionRecord is what the session store keeps between requests. Scores are
// never stored; they are rebuilt by replaying Decisions.
type SessionRecord struct {
	SessionID string     `json:"session_id"`
	Contact   Contact    `json:"contact"`
	Decisions []Decision `json:"decisions"`
	Winner    Label      `json:"winner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type LeadRecord struct {
	SessionID string
	Contact   Contact
	Winner    Label
	CreatedAt time.Time
}

type ResultRecord struct {
	SessionID   string
	Email       string
	Winner      Label
	Scores      ScoreBoard
	CompletedAt time.Time
}

// SessionStore is the always-available key-value store for in-flight sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// LeadRepository is the remote datastore. Writes to it are best-effort.
type LeadRepository interface {
	SaveLead(ctx context.Context, sessionID string, contact Contact, createdAt time.Time) error
	SaveResult(ctx context.Context, result ResultRecord) error
	GetLead(ctx context.Context, email string) (LeadRecord, error)
}

// Observer receives domain events for telemetry.
type Observer interface {
	SessionStarted()
	DecisionRecorded(accepted bool)
	SessionReset()
	ResultComputed(winner Label)
	PersistFailed(operation string)
}

type nopObserver struct{}

func (nopObserver) SessionStarted() {}
func (nopObserver) DecisionRecorded(bool) {}
func (nopObserver) SessionReset() {}
func (nopObserver) ResultComputed(Label) {}
func (nopObserver) PersistFailed(string) {}
