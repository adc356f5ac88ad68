// Package redact provides an optional message-scrubbing hook a tailer may
// apply to admitted log messages before they become part of a LogEvent
// (SPEC_FULL.md §10.5). Off by default; adapted from the teacher's own PII
// scrubber, narrowed to operate on a single message string instead of a
// nested metric-event tree.
package redact

import "regexp"

const redacted = "[REDACTED]"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),              // email
	regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`),                          // IPv4
	regexp.MustCompile(`0x[a-fA-F0-9]{40}`),                                          // wallet address
	regexp.MustCompile(`(?i)(API_KEY|SECRET|PASSWORD|TOKEN|JWT|PRIVATE_KEY|ACCESS_KEY|SECRET_KEY)=\S+`), // env-style secrets
	regexp.MustCompile(`(?i)(serial|device[_-]?id|uuid|guid|hwid)[\s:=]+[a-zA-Z0-9-]{6,}`),               // device identifiers
}

// Message redacts emails, IPv4 addresses, wallet addresses, env-style
// secrets and device identifiers from line, replacing each match with
// "[REDACTED]".
func Message(line string) string {
	for _, re := range patterns {
		line = re.ReplaceAllString(line, redacted)
	}
	return line
}
