package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"swipe-quiz/internal/quiz"
	"swipe-quiz/internal/quiz/sqlite"
	"swipe-quiz/internal/sessionstore"
)

var leadEmail string

var leadCmd = &cobra.Command{
	Use:   "lead",
	Short: "Show the latest stored lead for an e-mail address",
	Args:  cobra.NoArgs,
	RunE:  runLead,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count completed quizzes per matched profile",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

type leadOutput struct {
	SessionID string `yaml:"session_id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone_number"`
	Company   string `yaml:"company_name"`
	Winner    string `yaml:"winner,omitempty"`
	CreatedAt string `yaml:"created_at"`
}

func openLeadStore() (*sqlite.SQLiteStore, error) {
	if !cfg.Datastore.Enabled {
		return nil, errors.New("lead datastore is disabled in the config")
	}
	return sqlite.NewSQLiteStore(cfg.Datastore.SQLitePath)
}

func runLead(cmd *cobra.Command, _ []string) error {
	store, err := openLeadStore()
	if err != nil {
		return err
	}
	defer store.Close()

	deck, err := quiz.LoadDeck(cfg.Deck.Path)
	if err != nil {
		return err
	}
	service := quiz.NewService(deck, sessionstore.NewMemoryStore(1, 0),
		quiz.WithLeadRepository(store),
		quiz.WithLogger(logger),
	)

	lead, err := service.LookupLead(cmd.Context(), leadEmail)
	if errors.Is(err, quiz.ErrLeadNotFound) {
		return fmt.Errorf("no lead stored for %s", leadEmail)
	}
	if err != nil {
		return err
	}

	output := leadOutput{
		SessionID: lead.SessionID,
		FirstName: lead.Contact.FirstName,
		LastName:  lead.Contact.LastName,
		Email:     lead.Contact.Email,
		Phone:     lead.Contact.PhoneNumber,
		Company:   lead.Contact.CompanyName,
		Winner:    string(lead.Winner),
		CreatedAt: lead.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(output)
}

func runStats(cmd *cobra.Command, _ []string) error {
	store, err := openLeadStore()
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.CountResults(cmd.Context())
	if err != nil {
		return err
	}

	labels := make([]quiz.Label, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	if len(labels) == 0 {
		fmt.Println("No completed quizzes yet.")
		return nil
	}
	for _, label := range labels {
		fmt.Printf("%-20s %d\n", label, counts[label])
	}
	return nil
}
