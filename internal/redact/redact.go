// Package redact scrubs sensitive material from strings before they reach
// logs or error responses: connection strings, credentials, tokens, file
// paths and raw SQL that tend to ride along inside wrapped errors.
package redact

import "regexp"

// Placeholders substituted for matched sensitive content
const (
	PlaceholderCredential = "[REDACTED_CREDENTIAL]"
	PlaceholderKey        = "[REDACTED_KEY]"
	PlaceholderPath       = "[REDACTED_PATH]"
	PlaceholderJWT        = "[REDACTED_JWT]"
	PlaceholderEmail      = "[REDACTED_EMAIL]"
	PlaceholderSQL        = "[REDACTED_SQL]"
	PlaceholderHost       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: connection strings must be scrubbed before the generic
// host pattern, and JWTs before the generic key pattern.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^@\s]+@`), PlaceholderCredential},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`), PlaceholderCredential},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), PlaceholderJWT},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), PlaceholderKey},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), PlaceholderEmail},
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()='"$]+\b(FROM|INTO|SET)\b[\s\w,*()='"$.]*`), PlaceholderSQL},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PlaceholderPath},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), PlaceholderHost},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
