// Package schema defines the structured shapes the analysis pipeline
// produces. Field names are stable: the serialized form is what gets
// persisted and what API clients receive.
package schema

// LogError is one detected error event. Timestamp is nil when the log
// line carried none.
type LogError struct {
	Timestamp    *string `json:"timestamp"`
	ErrorMessage string  `json:"error_message"`
	ErrorType    string  `json:"error_type"`
}

// FixSection is one remediation phase: a short summary plus ordered steps.
type FixSection struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

// PossibleSolution bundles the three fix phases for one error.
// ErrorMessage correlates it to an entry in LogAnalysisResponse.Errors by
// value, not by index. SearchKeywords is an optional hint the model may
// emit; References is filled in by the enrichment step.
type PossibleSolution struct {
	ErrorMessage       string     `json:"error_message"`
	ImmediateFix       FixSection `json:"immediate_fix"`
	PermanentFix       FixSection `json:"permanent_fix"`
	PreventiveMeasures FixSection `json:"preventive_measures"`
	SearchKeywords     string     `json:"search_keywords,omitempty"`
	References         []string   `json:"references,omitempty"`
}

// LogAnalysisResponse is the full result of one analysis request.
// LogID is nil until the record has been persisted.
type LogAnalysisResponse struct {
	LogID             *int64             `json:"log_id,omitempty"`
	Errors            []LogError         `json:"errors"`
	PossibleSolutions []PossibleSolution `json:"possible_solutions"`
}

// DefaultPayload is the sentinel the invoker returns when the model
// backend is exhausted. It parses to an empty but valid response.
const DefaultPayload = `{"errors": [], "possible_solutions": []}`

// Empty returns a valid response with no findings. Slices are non-nil so
// the JSON form always contains both arrays.
func Empty() *LogAnalysisResponse {
	return &LogAnalysisResponse{
		Errors:            []LogError{},
		PossibleSolutions: []PossibleSolution{},
	}
}
