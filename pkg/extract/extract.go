// Package extract locates and parses JSON fragments embedded in partially
// binary request bodies, and harvests human-readable text from the parsed
// trees.
//
// The wire format is not pure JSON: an opaque envelope wraps zero or more
// JSON objects. Two extraction strategies are provided behind one interface.
// The envelope extractor is the default; the balanced-brace scanner is the
// more general (and costlier) fallback.
package extract

import (
	"encoding/json"
	"regexp"
)

// Fragment is one JSON object parsed out of a captured body. The tree is
// schema-less: mappings, sequences, and scalars at unbounded depth.
type Fragment map[string]any

// Result is the outcome of one extraction pass.
type Result struct {
	// Fragments holds the objects that parsed successfully, in
	// left-to-right order of appearance.
	Fragments []Fragment

	// Candidates is the number of substrings considered. Candidates that
	// fail to parse are dropped individually; the difference between
	// Candidates and len(Fragments) is the aggregate parse-failure count.
	Candidates int
}

// Dropped returns the number of candidate substrings that failed to parse.
func (r Result) Dropped() int {
	return r.Candidates - len(r.Fragments)
}

// Extractor finds JSON fragments in a decoded text blob. Implementations
// never fail past their own boundary: malformed candidates are skipped and
// whatever parsed successfully is returned.
type Extractor interface {
	Name() string
	Extract(text string) Result
}

// envelopePattern matches the outermost {"root": {...}} shape, non-greedy,
// spanning newlines. This is an intentional narrowing: only fragments
// conforming to the known envelope key are attempted.
var envelopePattern = regexp.MustCompile(`(?s)\{\s*"root"\s*:\s*\{.*?\}\s*\}`)

// Envelope extracts fragments by matching the known {"root": ...} envelope.
type Envelope struct{}

// NewEnvelope returns the default, envelope-pattern extractor.
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// Name identifies the strategy.
func (e *Envelope) Name() string { return "envelope" }

// Extract applies the envelope pattern and parses each match as JSON.
// Matches that fail to parse are silently dropped.
func (e *Envelope) Extract(text string) Result {
	matches := envelopePattern.FindAllString(text, -1)

	result := Result{Candidates: len(matches)}
	for _, m := range matches {
		var frag Fragment
		if err := json.Unmarshal([]byte(m), &frag); err != nil {
			continue
		}
		result.Fragments = append(result.Fragments, frag)
	}

	return result
}

// Chain runs the primary extractor and falls back to the secondary only
// when the primary yields zero fragments.
type Chain struct {
	primary  Extractor
	fallback Extractor
}

// NewChain builds a fallback chain over the two strategies.
func NewChain(primary, fallback Extractor) *Chain {
	return &Chain{primary: primary, fallback: fallback}
}

// Name identifies the chain by its parts.
func (c *Chain) Name() string {
	return c.primary.Name() + "+" + c.fallback.Name()
}

// Extract runs the primary strategy, then the fallback if nothing parsed.
func (c *Chain) Extract(text string) Result {
	result := c.primary.Extract(text)
	if len(result.Fragments) > 0 {
		return result
	}

	return c.fallback.Extract(text)
}
