package userclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"swipe-quiz/internal/quiz"
)

type contactField struct {
	name  string
	label string
	value *string
}

func contactFields(contact *quiz.Contact) []contactField {
	return []contactField{
		{name: "first_name", label: "Voornaam", value: &contact.FirstName},
		{name: "last_name", label: "Achternaam", value: &contact.LastName},
		{name: "email", label: "E-mail", value: &contact.Email},
		{name: "phone_number", label: "Telefoonnummer", value: &contact.PhoneNumber},
		{name: "company_name", label: "Bedrijfsnaam", value: &contact.CompanyName},
	}
}

func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptDirection reads a swipe: r/right/like accepts, l/left/nope rejects.
// The second result is false after maxInvalid unreadable answers.
func promptDirection(reader *bufio.Reader, out io.Writer, maxInvalid int) (bool, bool, error) {
	for invalid := 0; invalid < maxInvalid; invalid++ {
		answer, err := promptLine(reader, out, "Swipe (l)eft or (r)ight: ")
		if err != nil {
			return false, false, err
		}
		switch strings.ToLower(answer) {
		case "r", "right", "like", "ja":
			return true, true, nil
		case "l", "left", "nope", "nee":
			return false, true, nil
		}
		fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalid-invalid-1)
	}
	return false, false, nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  profiles")
	fmt.Fprintln(out, "  play")
	fmt.Fprintln(out, "  exit")
}

func deckTitle(deck Deck) string {
	if strings.TrimSpace(deck.Title) != "" {
		return deck.Title
	}
	return deck.Name
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes", "j", "ja":
			return true, nil
		case "n", "no", "nee":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	return err
}
