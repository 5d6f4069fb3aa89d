package llm

import "regexp"

// Sanitizer redacts credential-looking material from log text before it
// is embedded in a prompt. Redaction is opt-in: production logs routinely
// leak keys, but rewriting the input also changes what the model sees, so
// the caller decides.
type Sanitizer struct {
	patterns []*secretPattern
}

type secretPattern struct {
	regex       *regexp.Regexp
	replacement string
	name        string
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: []*secretPattern{
			{
				regex:       regexp.MustCompile(`(?i)(api[_-]?key|apikey)[=:]["']?([a-zA-Z0-9_\-]{20,})["']?`),
				replacement: `$1=[REDACTED_API_KEY]`,
				name:        "API Key",
			},
			{
				regex:       regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9_\-\.]+)`),
				replacement: `Bearer [REDACTED_TOKEN]`,
				name:        "Bearer Token",
			},
			{
				regex:       regexp.MustCompile(`(?i)(AKIA|ABIA|ACCA|ASIA)[A-Z0-9]{16}`),
				replacement: `[REDACTED_AWS_KEY]`,
				name:        "AWS Access Key",
			},
			{
				regex:       regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----[\s\S]*?-----END\s+(RSA\s+)?PRIVATE KEY-----`),
				replacement: `[REDACTED_PRIVATE_KEY]`,
				name:        "Private Key",
			},
			{
				regex:       regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`),
				replacement: `[REDACTED_GITHUB_TOKEN]`,
				name:        "GitHub PAT",
			},
			{
				regex:       regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token)[=:]["']?([^\s"']{8,})["']?`),
				replacement: `$1=[REDACTED]`,
				name:        "Password/Secret",
			},
			{
				regex:       regexp.MustCompile(`(?i)(mongodb|postgresql|mysql|redis)://[^:]+:([^@]+)@`),
				replacement: `$1://[user]:[REDACTED]@`,
				name:        "Database Password",
			},
			{
				regex:       regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
				replacement: `[REDACTED_JWT]`,
				name:        "JWT Token",
			},
		},
	}
}

// Sanitize replaces every matched secret with its redaction marker.
func (s *Sanitizer) Sanitize(input string) string {
	result := input
	for _, pattern := range s.patterns {
		result = pattern.regex.ReplaceAllString(result, pattern.replacement)
	}
	return result
}

// SanitizeWithReport also returns the names of the pattern classes found.
func (s *Sanitizer) SanitizeWithReport(input string) (sanitized string, found []string) {
	result := input
	for _, pattern := range s.patterns {
		if pattern.regex.MatchString(result) {
			found = append(found, pattern.name)
			result = pattern.regex.ReplaceAllString(result, pattern.replacement)
		}
	}
	return result, found
}

// ContainsSecrets reports whether any pattern matches without rewriting.
func (s *Sanitizer) ContainsSecrets(input string) bool {
	for _, pattern := range s.patterns {
		if pattern.regex.MatchString(input) {
			return true
		}
	}
	return false
}
