package ai

import (
	"regexp"
	"strings"
)

var fenceRegex = regexp.MustCompile("(?s)```([a-zA-Z0-9]*)[ \t]*\r?\n(.*?)```")

type fencedBlock struct {
	tag   string // lowercased fence tag, may be empty
	body  string
	start int
	end   int
}

// tagToPlatform maps fence tags (and their common aliases) to platforms.
var tagToPlatform = map[string]Platform{
	"pinescript": PlatformPine,
	"pine":       PlatformPine,
	"mql4":       PlatformMQL4,
	"mq4":        PlatformMQL4,
	"mql5":       PlatformMQL5,
	"mq5":        PlatformMQL5,
	"python":     PlatformPython,
	"py":         PlatformPython,
}

// DetectPlatform derives a platform hint from the user's own wording.
// Returns the empty string when the prompt names no platform.
func DetectPlatform(prompt string) Platform {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "mql5"), strings.Contains(p, "metatrader 5"), strings.Contains(p, "mt5"):
		return PlatformMQL5
	case strings.Contains(p, "mql4"), strings.Contains(p, "metatrader 4"), strings.Contains(p, "mt4"):
		return PlatformMQL4
	case strings.Contains(p, "metatrader"):
		return PlatformMQL5
	case strings.Contains(p, "pine"), strings.Contains(p, "tradingview"):
		return PlatformPine
	case strings.Contains(p, "python"):
		return PlatformPython
	}
	return ""
}

// structurallyValid rejects hallucinated or truncated snippets: a tagged
// block only counts for its platform when the body carries the platform's
// own markers. Pine needs a version directive; MQL needs a property marker
// plus either the strict directive or a tick handler. Python has no
// reliable marker and is accepted as tagged.
func structurallyValid(p Platform, body string) bool {
	switch p {
	case PlatformPine:
		return strings.Contains(body, "//@version")
	case PlatformMQL4, PlatformMQL5:
		return strings.Contains(body, "#property") &&
			(strings.Contains(body, "#property strict") || strings.Contains(body, "OnTick("))
	case PlatformPython:
		return true
	}
	return false
}

// Parse splits one raw completion into per-platform code artifacts and the
// stripped narrative. hint is the platform the user asked for, or empty.
//
// The parser never fails: malformed or missing blocks simply leave their
// platform empty, and callers must treat empty string as "no artifact".
func Parse(raw string, hint Platform) *ParseResult {
	res := &ParseResult{Code: map[Platform]string{
		PlatformPine:   "",
		PlatformMQL4:   "",
		PlatformMQL5:   "",
		PlatformPython: "",
	}}

	var blocks []fencedBlock
	for _, m := range fenceRegex.FindAllStringSubmatchIndex(raw, -1) {
		blocks = append(blocks, fencedBlock{
			tag:   strings.ToLower(raw[m[2]:m[3]]),
			body:  raw[m[4]:m[5]],
			start: m[0],
			end:   m[1],
		})
	}

	claimed := make(map[int]bool)

	// First structurally-valid tagged match per platform wins; later
	// matches for the same platform are discarded.
	for i, b := range blocks {
		p, ok := tagToPlatform[b.tag]
		if !ok {
			continue
		}
		if res.Code[p] != "" || !structurallyValid(p, b.body) {
			continue
		}
		res.Code[p] = strings.TrimSpace(b.body)
		claimed[i] = true
	}

	// Untagged fence falls back to Pine Script when no tagged Pine block
	// exists.
	if res.Code[PlatformPine] == "" {
		for i, b := range blocks {
			if b.tag != "" || claimed[i] {
				continue
			}
			res.Code[PlatformPine] = strings.TrimSpace(b.body)
			claimed[i] = true
			break
		}
	}

	// When the user asked for a platform and nothing satisfied it, scan
	// every fence for the platform's structural marker with looser tagging.
	if hint != "" && res.Code[hint] == "" {
		for i, b := range blocks {
			if claimed[i] || !structurallyValid(hint, b.body) {
				continue
			}
			if hint == PlatformPython {
				// Python has no marker; only a python-ish tag qualifies.
				if tagToPlatform[b.tag] != PlatformPython {
					continue
				}
			}
			res.Code[hint] = strings.TrimSpace(b.body)
			claimed[i] = true
			break
		}
	}

	res.Narrative = stripClaimed(raw, blocks, claimed)
	return res
}

func stripClaimed(raw string, blocks []fencedBlock, claimed map[int]bool) string {
	if len(claimed) == 0 {
		return strings.TrimSpace(raw)
	}
	var sb strings.Builder
	last := 0
	for i, b := range blocks {
		if !claimed[i] {
			continue
		}
		sb.WriteString(raw[last:b.start])
		last = b.end
	}
	sb.WriteString(raw[last:])
	return strings.TrimSpace(sb.String())
}
