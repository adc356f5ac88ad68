package tailer

import (
	"regexp"
	"time"
)

// lineRe matches the log wire format: "[<TIMESTAMP>] <MESSAGE>\r?\n"
// (spec.md §6).
var lineRe = regexp.MustCompile(`^\[([^]]+)\] (.+?)\r?\n$`)

// timestampLayout is the Go reference-time equivalent of "%a %b %d %H:%M:%S %Y".
const timestampLayout = "Mon Jan 2 15:04:05 2006"

// parseLine splits a raw framed line into its timestamp and message parts.
// Reports ok=false for lines that don't match the wire format.
func parseLine(line string) (timestamp, message string, ok bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// parseTimestamp parses the wire timestamp format in local time and returns
// the parse error on failure; the caller (Tailer.handleLine) logs it and falls
// back to the local-wall-clock now (spec.md §4.B "Date parsing").
func parseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, time.Local)
}
