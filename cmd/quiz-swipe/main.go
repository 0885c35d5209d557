package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swipe-quiz/internal/config"
	"swipe-quiz/internal/logging"
	"swipe-quiz/internal/tui"
	"swipe-quiz/internal/userclient"
)

var (
	configPath string
	serverURL  string
	timeout    time.Duration
	lineMode   bool
	maxInvalid int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "quiz-swipe",
	Short: "Swipe through the quiz against a running quiz-service",
	Long: `quiz-swipe fills in the contact form and shows the prompt cards in the
terminal. Drag a card with the mouse past the threshold, or use the arrow
keys: right to like, left to nope.

Use --line for a plain line-mode client that works without mouse support.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSwipe,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "quiz service base URL")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "HTTP timeout")
	rootCmd.Flags().BoolVar(&lineMode, "line", false, "Use the line-mode client instead of the full-screen one")
	rootCmd.Flags().IntVar(&maxInvalid, "max-invalid", 3, "Unreadable answers allowed per prompt in line mode")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runSwipe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if lineMode {
		return userclient.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), userclient.Config{
			ServerURL:       serverURL,
			MaxInvalidInput: maxInvalid,
			HTTPTimeout:     timeout,
		})
	}

	// The full-screen client owns the terminal, so logs only go to a file.
	logger := zap.NewNop()
	if cfg.Logging.File != "" {
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	client := userclient.NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	return tui.Run(ctx, client, tui.Options{
		Gesture:       cfg.GestureSettings(),
		PixelsPerCell: cfg.Gesture.PixelsPerCell,
		MatchOverlay:  cfg.GetMatchOverlay(),
		Logger:        logger,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
