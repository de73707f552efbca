// Package toast extracts leveled notification directives from narrative text.
package toast

import (
	"regexp"
	"strings"
)

// Level classifies a notification event.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is one discrete event extracted from a completion. Events are
// display-only and never persisted.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Directive syntax: [TOAST_<LEVEL>:<title>:<message>] where the title
// contains no colon and the message no closing bracket.
var toastRegex = regexp.MustCompile(`\[TOAST_(SUCCESS|ERROR|WARNING|INFO):([^:\]]*):([^\]]*)\]`)

// Extract scans text left-to-right for notification directives, returning
// the events in encounter order and the text with every matched span
// removed. Extraction and removal agree on identical spans, so running
// Extract on its own output is a no-op.
func Extract(text string) ([]Notification, string) {
	matches := toastRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, text
	}

	events := make([]Notification, 0, len(matches))
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		events = append(events, Notification{
			Level:   Level(strings.ToLower(text[m[2]:m[3]])),
			Title:   strings.TrimSpace(text[m[4]:m[5]]),
			Message: strings.TrimSpace(text[m[6]:m[7]]),
		})
		sb.WriteString(text[last:m[0]])
		last = m[1]
	}
	sb.WriteString(text[last:])

	return events, sb.String()
}
