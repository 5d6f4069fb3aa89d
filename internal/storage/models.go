package storage

import (
	"fmt"
	"time"
)

// Feedback choices. Anything else is rejected at the gateway.
const (
	FeedbackYes = "Yes"
	FeedbackNo  = "No"
)

// LogRecord is one persisted analysis joined with its latest feedback
// (empty strings when no feedback exists yet).
type LogRecord struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Summary        string    `json:"summary"`
	Analysis       string    `json:"analysis"`
	FeedbackChoice string    `json:"feedback_choice,omitempty"`
	FeedbackText   string    `json:"feedback_text,omitempty"`
}

// ValidateFeedbackChoice rejects anything but Yes/No.
func ValidateFeedbackChoice(choice string) error {
	if choice != FeedbackYes && choice != FeedbackNo {
		return fmt.Errorf("invalid feedback choice %q: must be %q or %q", choice, FeedbackYes, FeedbackNo)
	}
	return nil
}
