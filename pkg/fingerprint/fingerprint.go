// Package fingerprint produces deterministic digests of extracted content
// for session-scoped deduplication.
//
// Fingerprints are SHA-256 over canonicalized input, so they are stable
// across process restarts; equality of fingerprints stands in for equality
// of content without storing or comparing the content itself.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"sort"
	"strings"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
)

// textSeparator joins sorted texts before hashing. The pipe is not expected
// inside extracted content boundaries often enough to matter for dedup.
const textSeparator = "|"

// Text fingerprints the set of texts across all groups. Texts are flattened
// and sorted lexicographically first, so the result is invariant to
// fragment/object ordering — but not to duplicate-count changes: the same
// text appearing twice hashes differently than appearing once.
func Text(groups []extract.TextGroup) string {
	var all []string
	for _, g := range groups {
		all = append(all, g.Texts...)
	}
	sort.Strings(all)

	return digest([]byte(strings.Join(all, textSeparator)))
}

// Objects fingerprints the fragment list. Each fragment is serialized with
// keys sorted (RFC 8785 canonical JSON), but the order of fragments in the
// list is preserved — a deliberate asymmetry from Text.
func Objects(frags []extract.Fragment) string {
	data, err := json.Marshal(frags)
	if err != nil {
		panic("failed to marshal fingerprint input: " + err.Error())
	}

	// Canonicalize according to RFC 8785. As of Go 1.25.x this requires
	// GOEXPERIMENT=jsonv2 for the json v2 and jsontext packages. Sorting
	// keys here is what makes the digest stable from one run to the next.
	j := jsontext.Value(data)
	if err := j.Canonicalize(); err != nil {
		panic("failed to canonicalize JSON: " + err.Error())
	}

	h := sha256.Sum256(j)
	return hex.EncodeToString(h[:])
}

func digest(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
