package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swipe-quiz/internal/quiz"
)

const (
	defaultServer          = "http://127.0.0.1:8080"
	defaultHTTPTimeout     = 5 * time.Second
	defaultMaxInvalidInput = 3
)

type Config struct {
	ServerURL       string
	MaxInvalidInput int
	HTTPTimeout     time.Duration
}

// Run is the line-mode swipe client: it reads commands from in and plays the
// quiz against the service.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	maxInvalid := cfg.MaxInvalidInput
	if maxInvalid <= 0 {
		maxInvalid = defaultMaxInvalidInput
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "quiz-swipe\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "profiles":
			if err := runProfiles(ctx, out, client); err != nil {
				fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
			}
		case "play":
			if err := runPlay(ctx, reader, out, client, maxInvalid); err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return nil
				}
				fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func runProfiles(ctx context.Context, out io.Writer, client *HTTPClient) error {
	deck, err := client.GetDeck(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%d prompts)\n", deckTitle(deck), len(deck.Prompts))
	for idx, profile := range deck.Profiles {
		fmt.Fprintf(out, "%d. %s\n", idx+1, profile.Title)
	}
	return nil
}

func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, maxInvalid int) error {
	view, err := submitContactForm(ctx, reader, out, client)
	if err != nil {
		return err
	}

	for {
		if err := playSession(ctx, reader, out, client, view, maxInvalid); err != nil {
			return err
		}

		again, err := promptYesNo(reader, out, "Start over? (yes/no): ")
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		view, err = client.Reset(ctx, view.SessionID)
		if err != nil {
			return err
		}
	}
}

// submitContactForm asks for every contact field and resubmits until the
// service accepts the form. Only rejected fields are asked again.
func submitContactForm(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient) (quiz.SessionView, error) {
	fmt.Fprintln(out, "Vul je gegevens in om te beginnen.")

	var contact quiz.Contact
	pending := contactFields(&contact)
	for {
		for _, field := range pending {
			value, err := promptLine(reader, out, field.label+": ")
			if err != nil {
				return quiz.SessionView{}, err
			}
			*field.value = value
		}

		view, err := client.StartSession(ctx, contact)
		if err == nil {
			return view, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
			return quiz.SessionView{}, err
		}

		pending = pending[:0]
		for _, field := range contactFields(&contact) {
			if message, ok := apiErr.Fields[field.name]; ok {
				fmt.Fprintf(out, "%s: %s\n", field.label, message)
				pending = append(pending, field)
			}
		}
	}
}

func playSession(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, view quiz.SessionView, maxInvalid int) error {
	progress := view.Progress
	for progress.Next != nil {
		prompt := *progress.Next
		fmt.Fprintf(out, "\n[%d/%d] %s\n", progress.Decided+1, progress.Total, prompt.Text)

		accepted, ok, err := promptDirection(reader, out, maxInvalid)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Too many invalid answers; stopping this round.")
			return nil
		}

		result, err := client.Decide(ctx, view.SessionID, prompt.ID, accepted)
		if err != nil {
			return err
		}
		if result.Match {
			fmt.Fprintln(out, "It's a match!")
		}
		progress = result.Progress
	}

	outcome, err := client.Result(ctx, view.SessionID)
	if err != nil {
		return err
	}
	printOutcome(out, outcome)
	return nil
}

func printOutcome(out io.Writer, outcome quiz.Outcome) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Jouw BI-match: %s\n", outcome.Profile.Title)
	if outcome.Profile.Description != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(outcome.Profile.Description))
	}
	if outcome.Profile.Tip != "" {
		fmt.Fprintf(out, "\nTip: %s\n", strings.TrimSpace(outcome.Profile.Tip))
	}
	fmt.Fprintln(out)
	for _, ranked := range outcome.Ranked {
		fmt.Fprintf(out, "  %-16s %s\n", ranked.Label, formatScore(ranked.Score))
	}
}
