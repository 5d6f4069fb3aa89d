package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rca-agent/internal/config"
	"rca-agent/internal/schema"
	"rca-agent/internal/storage"
)

var (
	analyzeFile string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [log text]",
	Short: "Analyze a log and suggest fixes",
	Long: `Analyze sends a log to the configured LLM backend and prints the
errors it found together with immediate, permanent, and preventive fixes.

The log can be given as an argument, read from a file with --file, or
piped on stdin:

  rca-agent analyze "panic: runtime error: index out of range"
  rca-agent analyze --file /var/log/app.log
  kubectl logs my-pod | rca-agent analyze`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "read the log from a file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logText, err := readLogInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(logText) == "" {
		fmt.Println("\033[33m!\033[0m Nothing to analyze")
		return nil
	}

	cfg := config.Load()
	logger := newLogger(cfg)
	db, repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer := newAnalyzer(cfg, repo, logger)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Analyzing log..."
	s.Start()
	resp, err := analyzer.Analyze(cmd.Context(), logText)
	s.Stop()
	if err != nil {
		// The analysis itself succeeded; only the local write failed.
		fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %v\n", err)
	}

	if analyzeJSON {
		out, merr := json.MarshalIndent(resp, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Println(string(out))
		return nil
	}

	renderAnalysis(resp)

	if resp.LogID != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		promptFeedback(repo, *resp.LogID)
	}
	return nil
}

func readLogInput(args []string) (string, error) {
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", fmt.Errorf("read log file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no log given: pass it as an argument, use --file, or pipe it on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func renderAnalysis(resp *schema.LogAnalysisResponse) {
	if len(resp.Errors) == 0 && len(resp.PossibleSolutions) == 0 {
		fmt.Println("\033[33m!\033[0m No errors identified in this log")
		return
	}

	fmt.Printf("\n\033[1;31m✗ Found %d error(s):\033[0m\n\n", len(resp.Errors))
	for i, e := range resp.Errors {
		fmt.Printf("\033[1;36m[%d]\033[0m %s \033[90m(%s)\033[0m\n", i+1, e.ErrorMessage, e.ErrorType)
		if e.Timestamp != nil {
			fmt.Printf("    \033[90mat %s\033[0m\n", *e.Timestamp)
		}
	}

	for _, sol := range resp.PossibleSolutions {
		fmt.Printf("\n\033[1;32m> %s\033[0m\n", sol.ErrorMessage)
		renderFix("Immediate fix", sol.ImmediateFix)
		renderFix("Permanent fix", sol.PermanentFix)
		renderFix("Preventive measures", sol.PreventiveMeasures)
		if len(sol.References) > 0 {
			fmt.Println("  \033[1;33mReferences:\033[0m")
			for _, ref := range sol.References {
				fmt.Printf("    \033[90m%s\033[0m\n", ref)
			}
		}
	}
	fmt.Println()
}

func renderFix(label string, fix schema.FixSection) {
	fmt.Printf("  \033[1;33m%s:\033[0m %s\n", label, fix.Summary)
	for _, step := range fix.Steps {
		fmt.Printf("    \033[90m$\033[0m %s\n", step)
	}
}

func promptFeedback(repo *storage.Repository, logID int64) {
	fmt.Print("\nWas this analysis helpful? [y/n/skip]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	var choice string
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		choice = storage.FeedbackYes
	case "n", "no":
		choice = storage.FeedbackNo
	default:
		return
	}

	fmt.Print("Any comments? (enter to skip): ")
	comment, _ := reader.ReadString('\n')
	if _, err := repo.InsertFeedback(logID, choice, strings.TrimSpace(comment)); err != nil {
		fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m Failed to save feedback: %v\n", err)
		return
	}
	fmt.Println("\033[32m✓\033[0m Feedback saved")
}
