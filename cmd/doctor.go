package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rca-agent/internal/config"
	"rca-agent/internal/storage"
)

var doctorQuiet bool

type CheckResult struct {
	Name    string
	Status  string // "ok", "warn", "fail"
	Message string
	Hint    string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the agent is ready to run",
	Long: `Run health checks against everything the agent depends on:

  - an LLM backend (Azure OpenAI or Ollama)
  - the local database
  - the search endpoint used for reference links
  - the data directory`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false, "only show failures")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	fmt.Println("\033[1mrca-agent doctor\033[0m")
	fmt.Println()

	checks := []func(*config.Config) CheckResult{
		checkBackend,
		checkDataDir,
		checkDatabase,
		checkSearch,
	}

	var failed int
	for _, check := range checks {
		result := check(cfg)
		if result.Status == "fail" {
			failed++
		}
		if doctorQuiet && result.Status == "ok" {
			continue
		}

		fmt.Printf("%s \033[1m%s\033[0m\n", statusIcon(result.Status), result.Name)
		fmt.Printf("   %s\n", result.Message)
		if result.Hint != "" {
			fmt.Printf("   \033[36m%s\033[0m\n", result.Hint)
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("\033[32mAll checks passed\033[0m")
	return nil
}

func statusIcon(status string) string {
	switch status {
	case "ok":
		return "\033[32m✓\033[0m"
	case "warn":
		return "\033[33m!\033[0m"
	default:
		return "\033[31m✗\033[0m"
	}
}

func checkBackend(cfg *config.Config) CheckResult {
	if cfg.HasAzure() {
		return CheckResult{
			Name:    "LLM backend",
			Status:  "ok",
			Message: fmt.Sprintf("Azure OpenAI configured (deployment %s)", cfg.AzureDeployment),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.OllamaURL+"/api/tags", nil)
	if err == nil {
		var resp *http.Response
		resp, err = http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			return CheckResult{
				Name:    "LLM backend",
				Status:  "ok",
				Message: fmt.Sprintf("Ollama reachable at %s (model %s)", cfg.OllamaURL, cfg.OllamaModel),
			}
		}
	}
	return CheckResult{
		Name:    "LLM backend",
		Status:  "fail",
		Message: fmt.Sprintf("No Azure credentials and Ollama unreachable: %v", err),
		Hint:    "Set AZURE_ENDPOINT and API_KEY, or start Ollama (ollama serve)",
	}
}

func checkDataDir(cfg *config.Config) CheckResult {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return CheckResult{
			Name:    "Data directory",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot create %s: %v", cfg.DataDir, err),
		}
	}
	probe := filepath.Join(cfg.DataDir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return CheckResult{
			Name:    "Data directory",
			Status:  "fail",
			Message: fmt.Sprintf("%s is not writable: %v", cfg.DataDir, err),
		}
	}
	os.Remove(probe)
	return CheckResult{Name: "Data directory", Status: "ok", Message: cfg.DataDir}
}

func checkDatabase(cfg *config.Config) CheckResult {
	db, err := storage.InitDB(cfg.DataDir)
	if err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot open database: %v", err),
		}
	}
	defer db.Close()

	n, err := storage.FetchLogs(db, 1)
	if err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  "fail",
			Message: fmt.Sprintf("Schema check failed: %v", err),
		}
	}
	msg := "Schema OK, no analyses stored yet"
	if len(n) > 0 {
		msg = fmt.Sprintf("Schema OK, latest analysis from %s", n[0].CreatedAt.Format("2006-01-02 15:04"))
	}
	return CheckResult{Name: "Database", Status: "ok", Message: msg}
}

func checkSearch(cfg *config.Config) CheckResult {
	if cfg.SearchDisabled {
		return CheckResult{
			Name:    "Search enrichment",
			Status:  "warn",
			Message: "Disabled; solutions will only carry fallback links",
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.SearchURL, nil)
	if err == nil {
		var resp *http.Response
		resp, err = http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			return CheckResult{Name: "Search enrichment", Status: "ok", Message: cfg.SearchURL}
		}
	}
	return CheckResult{
		Name:    "Search enrichment",
		Status:  "warn",
		Message: fmt.Sprintf("%s unreachable: %v (analyses still work, links fall back)", cfg.SearchURL, err),
	}
}
