package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swipe-quiz/internal/cli"
	"swipe-quiz/internal/config"
	"swipe-quiz/internal/logging"
	"swipe-quiz/internal/quiz"
)

var (
	configPath string
	deckPath   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "quiz-cli",
	Short: "Play the swipe quiz offline in the terminal",
	Long: `quiz-cli plays a prompt deck locally. Answer L to swipe left (nope) or
R to swipe right (like). Nothing is sent to the quiz service.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runQuiz,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (default: builtin bi-match deck)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if deckPath != "" {
		cfg.Deck.Path = deckPath
	}

	// Logs go to stderr in console format so they do not mix with the quiz.
	cfg.Logging.Format = "console"
	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	deck, err := quiz.LoadDeck(cfg.Deck.Path)
	if err != nil {
		return err
	}
	logger.Debug("deck loaded", zap.String("deck", deck.Name), zap.Int("prompts", deck.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cli.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), deck)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
