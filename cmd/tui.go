package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-insight/internal/session"
	"github.com/kozaktomas/face-insight/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [image]",
	Short: "Analyze images interactively in the terminal",
	Long: `Open the interactive terminal UI. Enter an image path to load it,
press a to analyze it, and read one card per detected person.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().String("theme", "Dracula", "Color theme: Dracula or Light")
	tuiCmd.Flags().String("log-file", "", "Write logs to this file (logs are discarded otherwise)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs must not write to it.
	if logFile := mustGetString(cmd, "log-file"); logFile != "" {
		f, err := tea.LogToFile(logFile, "face-insight")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	locale := analyzer.Locale()

	var initialPath string
	if len(args) == 1 {
		initialPath = args[0]
	}

	return ui.Run(ctx, ui.Options{
		Session:     session.New(analyzer, locale.FailureMessage),
		Locale:      locale,
		InitialPath: initialPath,
		ThemeName:   mustGetString(cmd, "theme"),
	})
}
