package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"swipe-quiz/internal/metrics"
	"swipe-quiz/internal/quiz"
	"swipe-quiz/internal/sessionstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	deck, err := quiz.BuiltinDeck(quiz.DefaultDeckName)
	if err != nil {
		t.Fatalf("BuiltinDeck failed: %v", err)
	}
	service := quiz.NewService(deck, sessionstore.NewMemoryStore(100, 0))
	return NewRouter(service, Options{})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func validForm() startSessionRequest {
	return startSessionRequest{
		FirstName:   "Boris",
		LastName:    "Bakker",
		Email:       "boris@example.nl",
		PhoneNumber: "0612345678",
		CompanyName: "Koppelingen BV",
	}
}

func startSession(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/sessions", validForm())
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /sessions status = %d, body=%s", rec.Code, rec.Body.String())
	}
	return decode[sessionResponse](t, rec).SessionID
}

func TestHealthAndDeck(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || decode[healthResponse](t, rec).Status != "ok" {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/deck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /deck status = %d", rec.Code)
	}
	deck := decode[deckResponse](t, rec)
	if deck.Name != "bi-match" || len(deck.Prompts) != 7 || len(deck.Profiles) != 3 {
		t.Fatalf("unexpected deck: %+v", deck)
	}
	if deck.Prompts[0].ID != 1 || deck.Prompts[6].ID != 7 {
		t.Fatalf("prompts out of order: %+v", deck.Prompts)
	}
}

func TestHandleProfile(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/profiles/Boris%20BI", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET profile status = %d", rec.Code)
	}
	if profile := decode[quiz.Profile](t, rec); profile.ID != "Boris BI" || profile.Tip == "" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	rec = doJSON(t, router, http.MethodGet, "/profiles/Nobody", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown profile status = %d, want 404", rec.Code)
	}
}

func TestStartSessionRejectsInvalidForm(t *testing.T) {
	router := newTestRouter(t)

	form := validForm()
	form.Email = "not-an-email"
	form.CompanyName = ""
	rec := doJSON(t, router, http.MethodPost, "/sessions", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Fields["email"] == "" || body.Fields["company_name"] == "" || len(body.Fields) != 2 {
		t.Fatalf("unexpected field errors: %+v", body.Fields)
	}

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	raw := httptest.NewRecorder()
	router.ServeHTTP(raw, req)
	if raw.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON status = %d, want 400", raw.Code)
	}
}

func TestFullSwipeFlow(t *testing.T) {
	router := newTestRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/sessions/"+id+"/result", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("early result status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": 3, "accepted": true})
	if rec.Code != http.StatusConflict {
		t.Fatalf("out-of-sequence status = %d, want 409", rec.Code)
	}

	for promptID := 1; promptID <= 7; promptID++ {
		rec = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": promptID, "accepted": true})
		if rec.Code != http.StatusOK {
			t.Fatalf("decision %d status = %d body=%s", promptID, rec.Code, rec.Body.String())
		}
		body := decode[decisionResponse](t, rec)
		if !body.Match || body.Progress.Decided != promptID {
			t.Fatalf("decision %d unexpected response: %+v", promptID, body)
		}
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": 7, "accepted": false})
	if rec.Code != http.StatusConflict {
		t.Fatalf("decision after completion status = %d, want 409", rec.Code)
	}

	// Accepting everything: Emma 2, Diana 2, Boris 3.
	rec = doJSON(t, router, http.MethodGet, "/sessions/"+id+"/result", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d body=%s", rec.Code, rec.Body.String())
	}
	result := decode[resultResponse](t, rec)
	if result.Winner != "Boris BI" || result.Profile.Title != "Boris BI" || result.Scores["Boris BI"] != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Ranked) != 3 || result.Ranked[0].Label != "Boris BI" {
		t.Fatalf("unexpected ranking: %+v", result.Ranked)
	}
}

func TestRejectAllTiesToFirstDeclaredProfile(t *testing.T) {
	router := newTestRouter(t)
	id := startSession(t, router)

	for promptID := 1; promptID <= 7; promptID++ {
		rec := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": promptID, "accepted": false})
		if rec.Code != http.StatusOK {
			t.Fatalf("decision %d status = %d", promptID, rec.Code)
		}
		if decode[decisionResponse](t, rec).Match {
			t.Fatalf("reject must not report a match")
		}
	}

	// Emma 2.5, Diana 2.5, Boris 1.5.
	result := decode[resultResponse](t, doJSON(t, router, http.MethodGet, "/sessions/"+id+"/result", nil))
	if result.Winner != "Emma Excel" {
		t.Fatalf("winner = %q, want Emma Excel (scores %+v)", result.Winner, result.Scores)
	}
}

func TestResetAndSnapshot(t *testing.T) {
	router := newTestRouter(t)
	id := startSession(t, router)

	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": 1, "accepted": true})
	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": 2, "accepted": false})

	snapshot := decode[sessionResponse](t, doJSON(t, router, http.MethodGet, "/sessions/"+id, nil))
	if snapshot.Progress.Decided != 2 || snapshot.Progress.Next == nil || snapshot.Progress.Next.ID != 3 {
		t.Fatalf("unexpected snapshot: %+v", snapshot.Progress)
	}

	rec := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	reset := decode[sessionResponse](t, rec)
	if reset.Progress.Decided != 0 || reset.Progress.Next.ID != 1 {
		t.Fatalf("unexpected progress after reset: %+v", reset.Progress)
	}
}

func TestDecisionValidationAndUnknownSession(t *testing.T) {
	router := newTestRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/decisions", map[string]any{"prompt_id": 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing accepted status = %d, want 400", rec.Code)
	}

	for _, path := range []string{"/sessions/missing", "/sessions/missing/result"} {
		if rec := doJSON(t, router, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
	rec = doJSON(t, router, http.MethodPost, "/sessions/missing/decisions", map[string]any{"prompt_id": 1, "accepted": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("decision on unknown session status = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpointAndCORS(t *testing.T) {
	deck, err := quiz.BuiltinDeck(quiz.DefaultDeckName)
	if err != nil {
		t.Fatalf("BuiltinDeck failed: %v", err)
	}
	m, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics.New failed: %v", err)
	}
	service := quiz.NewService(deck, sessionstore.NewMemoryStore(10, 0), quiz.WithObserver(m))
	router := NewRouter(service, Options{Metrics: m, EnableCORS: true, AllowedOrigins: []string{"https://quiz.example.nl"}})

	startSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	for _, want := range []string{
		"swipe_quiz_sessions_started_total 1",
		fmt.Sprintf(`swipe_quiz_http_request_duration_seconds_count{method="POST",route="/sessions",status="%d"} 1`, http.StatusCreated),
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://quiz.example.nl")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight := httptest.NewRecorder()
	router.ServeHTTP(preflight, req)
	if got := preflight.Header().Get("Access-Control-Allow-Origin"); got != "https://quiz.example.nl" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
