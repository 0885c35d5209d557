package userclient

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"swipe-quiz/internal/httpapi"
	"swipe-quiz/internal/quiz"
	"swipe-quiz/internal/sessionstore"
)

func newQuizServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deck, err := quiz.BuiltinDeck(quiz.DefaultDeckName)
	if err != nil {
		t.Fatalf("BuiltinDeck failed: %v", err)
	}
	service := quiz.NewService(deck, sessionstore.NewMemoryStore(10, 0))
	server := httptest.NewServer(httpapi.NewRouter(service, httpapi.Options{}))
	t.Cleanup(server.Close)
	return server
}

func TestPromptDirection(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("up\n R \n"))
	var out bytes.Buffer

	accepted, ok, err := promptDirection(reader, &out, 3)
	if err != nil || !ok || !accepted {
		t.Fatalf("promptDirection = (%v, %v, %v), want (true, true, nil)", accepted, ok, err)
	}
	if !strings.Contains(out.String(), "Attempts remaining: 2") {
		t.Fatalf("expected retry message, got %q", out.String())
	}

	reader = bufio.NewReader(strings.NewReader("x\ny\n"))
	_, ok, err = promptDirection(reader, &out, 2)
	if err != nil || ok {
		t.Fatalf("expected give-up after 2 invalid answers, got ok=%v err=%v", ok, err)
	}
}

func TestPromptYesNoRetriesUntilValid(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("maybe\nja\n"))
	var out bytes.Buffer

	yes, err := promptYesNo(reader, &out, "Start over? ")
	if err != nil || !yes {
		t.Fatalf("promptYesNo = (%v, %v), want (true, nil)", yes, err)
	}
	if strings.Count(out.String(), "Start over? ") != 2 {
		t.Fatalf("expected prompt to repeat, got %q", out.String())
	}
}

func TestRunPlaysFullQuiz(t *testing.T) {
	server := newQuizServer(t)

	input := strings.Join([]string{
		"profiles",
		"play",
		"Boris", "Bakker", "not-an-email", "0612345678", "Koppelingen BV",
		"boris@example.nl",
		"r", "r", "r", "r", "r", "r", "r",
		"no",
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader(input), &out, Config{ServerURL: server.URL}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"All you need is BI (7 prompts)",
		"E-mail: email is invalid",
		"[7/7]",
		"It's a match!",
		"Jouw BI-match: Boris BI",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunStartOverReplaysDeck(t *testing.T) {
	server := newQuizServer(t)

	lines := []string{"play", "Emma", "Visser", "emma@example.nl", "0612345678", "Excel BV"}
	for i := 0; i < 7; i++ {
		lines = append(lines, "l")
	}
	lines = append(lines, "yes")
	for i := 0; i < 7; i++ {
		lines = append(lines, "r")
	}
	lines = append(lines, "no", "exit")

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, Config{ServerURL: server.URL}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Jouw BI-match: Emma Excel") || !strings.Contains(output, "Jouw BI-match: Boris BI") {
		t.Fatalf("expected both rounds to finish:\n%s", output)
	}
	if strings.Count(output, "[1/7]") != 2 {
		t.Fatalf("expected the deck to restart from the first prompt:\n%s", output)
	}
}

func TestRunReportsUnavailableService(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader("profiles\nexit\n"), &out, Config{ServerURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "quiz service unavailable at http://127.0.0.1:1") {
		t.Fatalf("expected unavailable message, got %q", out.String())
	}
}
