package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"swipe-quiz/internal/quiz"
)

const maxAttempts = 3

// Run plays deck locally, without the quiz service. Nothing is stored.
func Run(ctx context.Context, in io.Reader, out io.Writer, deck *quiz.Deck) error {
	session := quiz.NewSession(deck)
	reader := bufio.NewReader(in)

	for {
		prompt, ok := session.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		progress := session.Progress()
		printPrompt(out, progress.Decided+1, progress.Total, prompt)

		accepted, ok := getSwipe(reader, out)
		if !ok {
			fmt.Fprintln(out, "\nNo swipe given. Stopping.")
			return nil
		}
		if _, err := session.Decide(prompt.ID, accepted); err != nil {
			return err
		}
		if accepted {
			fmt.Fprintln(out, "It's a match!")
		}
	}

	outcome, err := session.Result()
	if err != nil {
		return err
	}
	printOutcome(out, outcome)
	return nil
}

func printPrompt(out io.Writer, number, total int, prompt quiz.Prompt) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "[%d/%d] %s\n\n", number, total, prompt.Text)
	fmt.Fprintln(out, "L. nope")
	fmt.Fprintln(out, "R. like")
	fmt.Fprintln(out)
}

// getSwipe reads L or R. The second result is false when no valid answer
// arrives within maxAttempts or the input ends.
func getSwipe(reader *bufio.Reader, out io.Writer) (bool, bool) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false, false
		}

		switch strings.ToUpper(strings.TrimSpace(answer)) {
		case "R", "RIGHT":
			return true, true
		case "L", "LEFT":
			return false, true
		}

		if err != nil {
			return false, false
		}
		if attempt < maxAttempts {
			fmt.Fprintln(out, "\nInvalid input. Please enter L or R.")
		}
	}

	return false, false
}

func printOutcome(out io.Writer, outcome quiz.Outcome) {
	title := outcome.Profile.Title
	if title == "" {
		title = string(outcome.Winner)
	}

	fmt.Fprintf(out, "\nJouw BI-match: %s\n", title)
	if tip := strings.TrimSpace(outcome.Profile.Tip); tip != "" {
		fmt.Fprintf(out, "Tip: %s\n", tip)
	}
	fmt.Fprintln(out)
	for _, ranked := range outcome.Ranked {
		fmt.Fprintf(out, "  %-16s %s\n", ranked.Label, strconv.FormatFloat(ranked.Score, 'f', -1, 64))
	}
}
