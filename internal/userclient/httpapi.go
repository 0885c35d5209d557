package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"swipe-quiz/internal/quiz"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
	// Fields carries per-field messages when the contact form was rejected.
	Fields map[string]string
}

func (e *APIError) Error() string {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	if len(e.Fields) == 0 {
		return message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return message + " (" + strings.Join(parts, ", ") + ")"
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Deck is the client-side view of GET /deck.
type Deck struct {
	Name     string         `json:"name"`
	Title    string         `json:"title,omitempty"`
	Profiles []quiz.Profile `json:"profiles"`
	Prompts  []quiz.Prompt  `json:"prompts"`
}

type DecisionResult struct {
	SessionID string        `json:"session_id"`
	Progress  quiz.Progress `json:"progress"`
	Match     bool          `json:"match"`
}

type decisionRequest struct {
	PromptID int  `json:"prompt_id"`
	Accepted bool `json:"accepted"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) GetDeck(ctx context.Context) (Deck, error) {
	var deck Deck
	if err := c.doJSON(ctx, http.MethodGet, "/deck", nil, &deck); err != nil {
		return Deck{}, err
	}
	return deck, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, label quiz.Label) (quiz.Profile, error) {
	if strings.TrimSpace(string(label)) == "" {
		return quiz.Profile{}, errors.New("profile label is required")
	}

	var profile quiz.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/profiles/"+url.PathEscape(string(label)), nil, &profile); err != nil {
		return quiz.Profile{}, err
	}
	return profile, nil
}

// StartSession submits the contact form. A rejected form comes back as an
// *APIError with Fields set.
func (c *HTTPClient) StartSession(ctx context.Context, contact quiz.Contact) (quiz.SessionView, error) {
	var view quiz.SessionView
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", contact, &view); err != nil {
		return quiz.SessionView{}, err
	}
	return view, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (quiz.SessionView, error) {
	var view quiz.SessionView
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &view); err != nil {
		return quiz.SessionView{}, err
	}
	return view, nil
}

func (c *HTTPClient) Decide(ctx context.Context, sessionID string, promptID int, accepted bool) (DecisionResult, error) {
	var result DecisionResult
	request := decisionRequest{PromptID: promptID, Accepted: accepted}
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/decisions"), request, &result); err != nil {
		return DecisionResult{}, err
	}
	return result, nil
}

func (c *HTTPClient) Reset(ctx context.Context, sessionID string) (quiz.SessionView, error) {
	var view quiz.SessionView
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &view); err != nil {
		return quiz.SessionView{}, err
	}
	return view, nil
}

func (c *HTTPClient) Result(ctx context.Context, sessionID string) (quiz.Outcome, error) {
	var outcome quiz.Outcome
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, "/result"), nil, &outcome); err != nil {
		return quiz.Outcome{}, err
	}
	return outcome, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/sessions/" + url.PathEscape(strings.TrimSpace(sessionID)) + suffix
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
			apiErr.Fields = payload.Fields
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
