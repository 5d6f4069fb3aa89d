// Package prompt renders the log-analysis instruction for the model
// backend. Building a prompt is a pure function: the only transformation
// applied to the log text is length capping.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultMaxChars caps the embedded log text so requests stay within
// backend limits.
const DefaultMaxChars = 50000

const truncationMarker = "\n...[log truncated]...\n"

const analysisTemplate = `You are an expert Root Cause Analysis (RCA) analyst for technical systems.

Your task is to analyze log entries and identify errors and their solutions.

ANALYSIS STEPS:
1. Identify all error events in the log
2. For each error, determine the error type (ApplicationError, SystemError, ConfigError, TimeoutError, etc.)
3. Provide solutions with immediate_fix, permanent_fix, and preventive_measures

REQUIRED OUTPUT FORMAT - Return ONLY valid JSON:
{
  "errors": [
    {
      "timestamp": "timestamp or null",
      "error_message": "clear summary of error",
      "error_type": "ApplicationError|SystemError|ConfigError|TimeoutError|etc"
    }
  ],
  "possible_solutions": [
    {
      "error_message": "same as matching error_message above",
      "search_keywords": "short web search phrase for this error",
      "immediate_fix": {
        "summary": "short overview of immediate fix",
        "steps": [
          "Step 1 with explanation",
          "Step 2 with explanation"
        ]
      },
      "permanent_fix": {
        "summary": "short overview of permanent fix",
        "steps": [
          "Code/config change with justification",
          "Testing or validation step"
        ]
      },
      "preventive_measures": {
        "summary": "short overview of prevention",
        "steps": [
          "Monitoring or alerting setup",
          "Process improvement"
        ]
      }
    }
  ]
}

RULES:
- Use only factual evidence from the logs
- If no errors found, return empty arrays for errors and possible_solutions
- Output ONLY the JSON structure above, no additional text

Now analyze this log:

%s

Remember to return ONLY valid JSON in the specified format above.`

// Build renders the analysis instruction around logText. maxChars <= 0
// means DefaultMaxChars.
func Build(logText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return fmt.Sprintf(analysisTemplate, Truncate(logText, maxChars))
}

// Truncate caps s at maxChars, keeping the head and tail around a marker.
// Errors tend to cluster at the end of a log, so the tail matters as much
// as the head.
func Truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	half := (maxChars - len(truncationMarker)) / 2
	if half < 1 {
		return strings.TrimSpace(s[:maxChars])
	}
	return s[:half] + truncationMarker + s[len(s)-half:]
}
