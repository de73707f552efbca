package ai

// Platform identifies a code target for generated strategies.
type Platform string

const (
	PlatformPine   Platform = "pine-script"
	PlatformMQL4   Platform = "mql4"
	PlatformMQL5   Platform = "mql5"
	PlatformPython Platform = "python"
)

// Platforms lists all supported targets in preference-neutral order.
var Platforms = []Platform{PlatformPine, PlatformMQL4, PlatformMQL5, PlatformPython}

// ParseResult holds the typed artifacts extracted from one raw completion:
// the per-platform code map and the narrative with code fences removed.
// An absent platform maps to the empty string, never an error.
type ParseResult struct {
	Code      map[Platform]string
	Narrative string
}

// Get returns the extracted source for a platform, empty when none was found.
func (r *ParseResult) Get(p Platform) string {
	if r.Code == nil {
		return ""
	}
	return r.Code[p]
}

// HasCode reports whether any platform yielded a non-empty artifact.
func (r *ParseResult) HasCode() bool {
	for _, src := range r.Code {
		if src != "" {
			return true
		}
	}
	return false
}

// Message is one turn of the chat history sent to the model.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}
