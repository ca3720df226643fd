package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/imaging"
	"github.com/kozaktomas/face-insight/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>...",
	Short: "Analyze the people in one or more images",
	Long: `Analyze one or more image files and print, for every detected person,
the inferred gender, age and a short description.

Each file is its own session: a failure on one file does not affect the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("json", false, "Print results as JSON")
	analyzeCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of images analyzed in parallel")
}

// fileResult is the outcome of one file's session.
type fileResult struct {
	File    string            `json:"file"`
	Phase   session.Phase     `json:"phase"`
	Results []ai.PersonRecord `json:"results"`
	Error   string            `json:"error,omitempty"`
}

// analyzeFile runs one session for path: acquire, then a single analysis.
func analyzeFile(ctx context.Context, analyzer session.Analyzer, failureMessage, path string) fileResult {
	img, err := imaging.AcquireFile(path)
	if err != nil {
		return fileResult{File: path, Phase: session.PhaseError, Results: []ai.PersonRecord{}, Error: err.Error()}
	}

	sess := session.New(analyzer, failureMessage)
	sess.Acquire(img)
	state, _ := sess.Analyze(ctx)

	results := state.Results
	if results == nil {
		results = []ai.PersonRecord{}
	}
	return fileResult{File: path, Phase: state.Phase, Results: results, Error: state.ErrorMessage}
}

// analyzeFiles analyzes every path with at most concurrency calls in flight.
// Results keep the order of paths.
func analyzeFiles(ctx context.Context, analyzer session.Analyzer, failureMessage string, paths []string, concurrency int, onDone func()) []fileResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = analyzeFile(ctx, analyzer, failureMessage, path)
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printFileResult(locale ai.Locale, r fileResult) {
	fmt.Printf("\n%s\n", r.File)
	switch r.Phase {
	case session.PhaseError:
		fmt.Printf("  %s\n", r.Error)
	case session.PhaseSuccess:
		if len(r.Results) == 0 {
			fmt.Printf("  %s\n", locale.EmptyMessage)
			return
		}
		for i, p := range r.Results {
			fmt.Printf("  %s %d: %s: %s, %s: %s\n", locale.PersonLabel, i+1, locale.GenderLabel, p.Gender, locale.AgeLabel, p.Age)
			fmt.Printf("    %s\n", p.Description)
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jsonOutput := mustGetBool(cmd, "json")
	concurrency := mustGetInt(cmd, "concurrency")

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal...")
		cancel()
	}()

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	locale := analyzer.Locale()

	var onDone func()
	if !jsonOutput && len(args) > 1 {
		bar := progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("Analyzing images"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		onDone = func() { bar.Add(1) }
	} else if !jsonOutput {
		fmt.Printf("Analyzing %s via %s...\n", args[0], analyzer.Name())
	}

	results := analyzeFiles(ctx, analyzer, locale.FailureMessage, args, concurrency, onDone)

	failed := 0
	for _, r := range results {
		if r.Phase != session.PhaseSuccess {
			failed++
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		fmt.Println()
		for _, r := range results {
			printFileResult(locale, r)
		}
		fmt.Printf("\nCompleted: %d successful, %d errors\n", len(results)-failed, failed)
		printUsage(analyzer.GetUsage())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be analyzed", failed, len(results))
	}
	return nil
}
