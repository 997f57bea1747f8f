package extract

import "encoding/json"

// BraceScanner extracts fragments by tracking brace nesting depth across the
// whole blob, capturing each maximal balanced {...} span at depth 0 and
// parsing it independently. It has no dependence on the envelope key, which
// makes it more general than Envelope but costlier, so it is wired as the
// fallback strategy.
type BraceScanner struct{}

// NewBraceScanner returns the balanced-brace fallback extractor.
func NewBraceScanner() *BraceScanner {
	return &BraceScanner{}
}

// Name identifies the strategy.
func (b *BraceScanner) Name() string { return "braces" }

// Extract scans for balanced top-level brace spans and parses each as JSON.
// Spans that fail to parse are silently dropped.
func (b *BraceScanner) Extract(text string) Result {
	var result Result

	depth := 0
	start := -1

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				result.Candidates++

				var frag Fragment
				if err := json.Unmarshal([]byte(text[start:i+1]), &frag); err == nil {
					result.Fragments = append(result.Fragments, frag)
				}
				start = -1
			}
		}
	}

	return result
}
