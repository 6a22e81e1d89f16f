package roadmaps

import (
	"regexp"
	"strings"

	"github.com/skillsprint/roadmap-api/internal/domain"
)

// Fence markers are removed wherever they appear, not only at the edges of the text.
// "```json" is stripped in any case and position; other language hints only on an opening
// fence that starts a line and ends it. Everything else loses just the backticks.
var (
	jsonFence     = regexp.MustCompile("(?i)```json")
	openHintFence = regexp.MustCompile("(?m)^([ \t]*)```[A-Za-z][A-Za-z0-9_+-]*[ \t]*$")
	bareFence     = regexp.MustCompile("```")
)

// Normalized is the outcome of Normalize. RawText is always the unmodified input.
type Normalized struct {
	RawText    string
	Structured *domain.RoadmapDocument

	// ParseErr is set when the cleaned text was not a single valid JSON value.
	// It is informational: callers degrade to RawText only, they never fail the request.
	ParseErr error
}

// CleanFences strips code-fence markers and surrounding whitespace.
func CleanFences(raw string) string {
	s := jsonFence.ReplaceAllString(raw, "")
	s = openHintFence.ReplaceAllString(s, "$1")
	s = bareFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Normalize extracts a JSON document from free-form model output.
func Normalize(raw string) Normalized {
	out := Normalized{RawText: raw}
	doc, err := domain.ParseRoadmapDocument([]byte(CleanFences(raw)))
	if err != nil {
		out.ParseErr = err
		return out
	}
	out.Structured = &doc
	return out
}
