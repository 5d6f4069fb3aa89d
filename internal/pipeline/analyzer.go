// Package pipeline orchestrates one log analysis: prompt build, model
// invocation with bounded retry, extraction, validation, optional
// enrichment, persistence. The outward contract is that Analyze always
// returns a well-formed response; the only error a caller can see is a
// persistence failure.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rca-agent/internal/config"
	"rca-agent/internal/enrich"
	"rca-agent/internal/extract"
	"rca-agent/internal/llm"
	"rca-agent/internal/prompt"
	"rca-agent/internal/schema"
)

// Store is the slice of the persistence gateway the pipeline needs.
// InsertLog returns the id of the stored record (or of an identical
// existing one).
type Store interface {
	InsertLog(summary, analysis string) (int64, error)
}

// Analyzer runs the analysis pipeline. Construct with New; the zero
// value is not usable.
type Analyzer struct {
	client   llm.Client
	enricher *enrich.Enricher // nil disables enrichment
	store    Store            // nil disables persistence
	logger   *logrus.Logger

	attempts       int
	backoff        time.Duration
	maxPromptChars int
	redactor       *llm.Sanitizer // nil unless redaction is enabled

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) bool
}

func New(cfg *config.Config, client llm.Client, enricher *enrich.Enricher, store Store, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	a := &Analyzer{
		client:         client,
		enricher:       enricher,
		store:          store,
		logger:         logger,
		attempts:       cfg.MaxRetries,
		backoff:        cfg.RetryBackoff,
		maxPromptChars: cfg.MaxPromptChars,
		sleep:          sleepCtx,
	}
	if a.attempts <= 0 {
		a.attempts = 3
	}
	if cfg.RedactSecrets {
		a.redactor = llm.NewSanitizer()
	}
	return a
}

// Analyze runs the full pipeline on logText. Empty or whitespace-only
// input short-circuits to an empty response with no backend call and no
// persistence write. A non-nil error means the analysis itself is fine
// but the write to the gateway failed.
func (a *Analyzer) Analyze(ctx context.Context, logText string) (resp *schema.LogAnalysisResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("panic", r).Error("log analysis panicked")
			resp, err = schema.Empty(), nil
		}
	}()

	if strings.TrimSpace(logText) == "" {
		return schema.Empty(), nil
	}

	text := logText
	if a.redactor != nil {
		var found []string
		text, found = a.redactor.SanitizeWithReport(text)
		if len(found) > 0 {
			a.logger.WithField("secrets", found).Info("redacted credentials from log text")
		}
	}

	raw := a.invoke(ctx, prompt.Build(text, a.maxPromptChars))

	norm, nerr := extract.Normalize(raw)
	if nerr != nil {
		a.logger.WithError(nerr).Warn("model output not extractable, using empty result")
	}

	resp = a.buildResponse(norm)

	if a.enricher != nil {
		a.enricher.Enrich(ctx, resp)
	}

	if a.store != nil {
		payload, merr := json.Marshal(resp)
		if merr != nil {
			return resp, fmt.Errorf("serialize analysis: %w", merr)
		}
		id, serr := a.store.InsertLog(logText, string(payload))
		if serr != nil {
			return resp, fmt.Errorf("persist analysis: %w", serr)
		}
		resp.LogID = &id
	}
	return resp, nil
}

// invoke calls the backend with a bounded fixed-delay retry. It never
// returns an error: when the budget is exhausted (or the context is
// cancelled between attempts) the sentinel default payload comes back
// instead.
func (a *Analyzer) invoke(ctx context.Context, p string) string {
	for attempt := 1; attempt <= a.attempts; attempt++ {
		out, err := a.client.Complete(ctx, p)
		if err == nil {
			return out
		}
		a.logger.WithError(err).WithFields(logrus.Fields{
			"backend": a.client.Name(),
			"attempt": attempt,
			"max":     a.attempts,
		}).Warn("model request failed")
		if attempt == a.attempts {
			break
		}
		if !a.sleep(ctx, a.backoff) {
			a.logger.Warn("analysis cancelled during retry backoff")
			break
		}
	}
	return schema.DefaultPayload
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
