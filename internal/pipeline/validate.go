package pipeline

import (
	"rca-agent/internal/extract"
	"rca-agent/internal/schema"
)

// Placeholders used when repairing an error record with missing required
// fields.
const (
	placeholderMessage = "Unknown error"
	placeholderType    = "UnknownError"
)

// buildResponse maps the normalized intermediate into typed records.
// Malformed records are handled individually: error records are repaired
// with placeholders where possible, solution records are dropped (their
// three nested fix sections leave no safe placeholder). Input order is
// preserved; the batch never fails as a whole.
func (a *Analyzer) buildResponse(n extract.Normalized) *schema.LogAnalysisResponse {
	resp := schema.Empty()
	for i, rec := range n.Errors {
		e, ok := buildError(rec)
		if !ok {
			a.logger.WithField("index", i).Warn("dropping unusable error record")
			continue
		}
		resp.Errors = append(resp.Errors, e)
	}
	for i, rec := range n.Solutions {
		s, ok := buildSolution(rec)
		if !ok {
			a.logger.WithField("index", i).Warn("dropping malformed solution record")
			continue
		}
		resp.PossibleSolutions = append(resp.PossibleSolutions, s)
	}
	return resp
}

// buildError constructs a LogError, falling back to placeholders for the
// required fields. Only a record that is not an object at all is
// unusable.
func buildError(rec any) (schema.LogError, bool) {
	m, ok := rec.(map[string]any)
	if !ok {
		return schema.LogError{}, false
	}
	e := schema.LogError{
		ErrorMessage: stringField(m, "error_message"),
		ErrorType:    stringField(m, "error_type"),
	}
	if ts := stringField(m, "timestamp"); ts != "" {
		e.Timestamp = &ts
	}
	if e.ErrorMessage == "" {
		e.ErrorMessage = placeholderMessage
	}
	if e.ErrorType == "" {
		e.ErrorType = placeholderType
	}
	return e, true
}

// buildSolution constructs a PossibleSolution. A missing error_message or
// any missing/malformed fix section rejects the record. The error_message
// is not required to match an entry in errors; orphaned correlations are
// the model's problem, not ours.
func buildSolution(rec any) (schema.PossibleSolution, bool) {
	m, ok := rec.(map[string]any)
	if !ok {
		return schema.PossibleSolution{}, false
	}
	msg := stringField(m, "error_message")
	if msg == "" {
		return schema.PossibleSolution{}, false
	}
	immediate, ok := buildFix(m["immediate_fix"])
	if !ok {
		return schema.PossibleSolution{}, false
	}
	permanent, ok := buildFix(m["permanent_fix"])
	if !ok {
		return schema.PossibleSolution{}, false
	}
	preventive, ok := buildFix(m["preventive_measures"])
	if !ok {
		return schema.PossibleSolution{}, false
	}
	return schema.PossibleSolution{
		ErrorMessage:       msg,
		ImmediateFix:       immediate,
		PermanentFix:       permanent,
		PreventiveMeasures: preventive,
		SearchKeywords:     stringField(m, "search_keywords"),
	}, true
}

func buildFix(v any) (schema.FixSection, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return schema.FixSection{}, false
	}
	summary, ok := m["summary"].(string)
	if !ok {
		return schema.FixSection{}, false
	}
	rawSteps, ok := m["steps"].([]any)
	if !ok {
		return schema.FixSection{}, false
	}
	steps := make([]string, 0, len(rawSteps))
	for _, s := range rawSteps {
		if str, ok := s.(string); ok {
			steps = append(steps, str)
		}
	}
	return schema.FixSection{Summary: summary, Steps: steps}, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
