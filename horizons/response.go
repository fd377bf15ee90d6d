package horizons

import (
	"fmt"
	"strings"
)

// Horizons wraps the usable data section between literal sentinels.
const (
	soeMarker = "$$SOE"
	eoeMarker = "$$EOE"

	// previewLimit bounds the response excerpt included in diagnostics.
	previewLimit = 500
)

// ResponseKind classifies a Horizons response by content. Horizons reports
// errors as free-form text in an otherwise normal response, not via status
// codes, so classification has to inspect the body.
type ResponseKind int

const (
	// KindData means the response carries a $$SOE/$$EOE data section.
	KindData ResponseKind = iota
	// KindSizeLimit means Horizons refused because the projected output
	// exceeds its line limit. This is the only recoverable condition.
	KindSizeLimit
	// KindOther is any other response: an unrecoverable error surfaced to
	// the operator verbatim.
	KindOther
)

// Classify inspects response text and tags it. Only the line-limit signature
// is pattern-matched; every other non-data response is passed through as-is.
func Classify(text string) ResponseKind {
	if IsSizeLimitError(text) {
		return KindSizeLimit
	}
	i := strings.Index(text, soeMarker)
	j := strings.Index(text, eoeMarker)
	if i != -1 && j != -1 && j > i {
		return KindData
	}
	return KindOther
}

// IsSizeLimitError reports whether the response is the known output-size
// refusal, e.g.:
//
//	Projected output length (~219147) exceeds 90024 line max -- change step-size
func IsSizeLimitError(text string) bool {
	return strings.Contains(text, "Projected output length") &&
		strings.Contains(text, "exceeds") &&
		strings.Contains(text, "line max")
}

// ExtractBlock returns the non-empty lines strictly between the first $$SOE
// and the first $$EOE. A missing or misordered sentinel pair means Horizons
// returned an error page instead of data; the error carries a bounded preview
// so the operator can diagnose without re-fetching.
func ExtractBlock(text string) ([]string, error) {
	start := strings.Index(text, soeMarker)
	end := strings.Index(text, eoeMarker)
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf(
			"Horizons response missing %s/%s block; this usually means Horizons returned an error message instead of ephemeris data; response preview:\n%s",
			soeMarker, eoeMarker, preview(text))
	}
	block := text[start+len(soeMarker) : end]

	var lines []string
	for _, ln := range strings.Split(block, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}

func preview(text string) string {
	p := strings.TrimSpace(text)
	if len(p) > previewLimit {
		p = p[:previewLimit] + "\n...(truncated)..."
	}
	return p
}

// spliceBlock rewraps the data section of one chunk for stitching. If the
// sentinels are missing or misordered the text passes through unmodified so
// the error surfaces downstream with full context.
//
// A half that was itself produced by a deeper bisection already starts with a
// sentinel and may carry several sections (or trailing error text); it passes
// through intact so nothing is lost at recursion depth two and beyond.
func spliceBlock(text string) string {
	if strings.HasPrefix(text, soeMarker) {
		return text
	}
	i := strings.Index(text, soeMarker)
	j := strings.Index(text, eoeMarker)
	if i == -1 || j == -1 || j <= i {
		return text
	}
	interior := strings.TrimLeft(text[i+len(soeMarker):j], "\n")
	return soeMarker + "\n" + interior + "\n" + eoeMarker + "\n"
}

// SectionCount reports how many data sections the text carries. Stitched
// chunk responses contain one section per surviving chunk.
func SectionCount(text string) int {
	return strings.Count(text, soeMarker)
}

// SplitSections splits stitched text into per-section texts, each rewrapped
// with its own sentinel pair. Fragments without a terminating sentinel are
// dropped.
func SplitSections(text string) []string {
	var sections []string
	for _, part := range strings.Split(text, soeMarker) {
		if !strings.Contains(part, eoeMarker) {
			continue
		}
		sections = append(sections, soeMarker+part)
	}
	return sections
}
