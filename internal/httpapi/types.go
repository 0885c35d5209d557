package httpapi

import "swipe-quiz/internal/quiz"

type healthResponse struct {
	Status string `json:"status"`
}

type deckResponse struct {
	Name     string         `json:"name"`
	Title    string         `json:"title,omitempty"`
	Profiles []quiz.Profile `json:"profiles"`
	Prompts  []quiz.Prompt  `json:"prompts"`
}

type startSessionRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CompanyName string `json:"company_name"`
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	Progress  quiz.Progress `json:"progress"`
}

type decisionRequest struct {
	PromptID *int  `json:"prompt_id" binding:"required"`
	Accepted *bool `json:"accepted" binding:"required"`
}

type decisionResponse struct {
	SessionID string        `json:"session_id"`
	Progress  quiz.Progress `json:"progress"`
	// Match drives the "it's a match" overlay shown after a right swipe.
	Match bool `json:"match"`
}

type resultResponse struct {
	SessionID string             `json:"session_id"`
	Winner    quiz.Label         `json:"winner"`
	Profile   quiz.Profile       `json:"profile"`
	Scores    quiz.ScoreBoard    `json:"scores"`
	Ranked    []quiz.RankedLabel `json:"ranked"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
