package extract_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
)

var _ = Describe("Envelope", func() {
	var e *extract.Envelope

	BeforeEach(func() {
		e = extract.NewEnvelope()
	})

	It("extracts a root-wrapped fragment surrounded by noise", func() {
		blob := `noise {"root":{"type":"text","text":"hi"}} noise`

		result := e.Extract(blob)
		Expect(result.Candidates).To(Equal(1))
		Expect(result.Fragments).To(HaveLen(1))
		Expect(result.Fragments[0]).To(HaveKey("root"))
	})

	It("truncates deeply nested envelopes at the first closing pair", func() {
		// The non-greedy pattern stops at the first `}}`, so a fragment
		// whose text node sits two levels down produces an invalid
		// candidate that gets dropped. The chained brace scanner picks
		// these up.
		blob := `noise {"root":{"a":{"type":"text","text":"hi"}}} noise`

		result := e.Extract(blob)
		Expect(result.Candidates).To(Equal(1))
		Expect(result.Fragments).To(BeEmpty())
		Expect(result.Dropped()).To(Equal(1))
	})

	It("extracts multiple fragments in left-to-right order", func() {
		blob := `x{"root":{"n":1}}y{"root":{"n":2}}z`

		result := e.Extract(blob)
		Expect(result.Fragments).To(HaveLen(2))

		first := result.Fragments[0]["root"].(map[string]any)
		second := result.Fragments[1]["root"].(map[string]any)
		Expect(first["n"]).To(BeNumerically("==", 1))
		Expect(second["n"]).To(BeNumerically("==", 2))
	})

	It("drops candidates that fail to parse without affecting siblings", func() {
		// The first envelope match is cut short by the non-greedy pattern
		// and is not valid JSON; the second parses fine.
		blob := `{"root":{"a":[}} junk {"root":{"ok":true}}`

		result := e.Extract(blob)
		Expect(result.Candidates).To(Equal(2))
		Expect(result.Fragments).To(HaveLen(1))
		Expect(result.Dropped()).To(Equal(1))
	})

	It("matches envelopes spanning newlines", func() {
		blob := "{\"root\": {\n  \"a\": 1\n}}"

		result := e.Extract(blob)
		Expect(result.Fragments).To(HaveLen(1))
	})

	It("returns an empty result for blobs without the envelope key", func() {
		result := e.Extract(`{"other":{"a":1}}`)
		Expect(result.Candidates).To(BeZero())
		Expect(result.Fragments).To(BeEmpty())
	})
})

var _ = Describe("BraceScanner", func() {
	var b *extract.BraceScanner

	BeforeEach(func() {
		b = extract.NewBraceScanner()
	})

	It("captures maximal balanced spans at depth zero", func() {
		blob := `pre {"a":{"b":1}} mid {"c":2} post`

		result := b.Extract(blob)
		Expect(result.Candidates).To(Equal(2))
		Expect(result.Fragments).To(HaveLen(2))
		Expect(result.Fragments[0]).To(HaveKey("a"))
		Expect(result.Fragments[1]).To(HaveKey("c"))
	})

	It("does not depend on the envelope key", func() {
		result := b.Extract(`{"other":{"a":1}}`)
		Expect(result.Fragments).To(HaveLen(1))
	})

	It("skips unbalanced and unparseable spans", func() {
		result := b.Extract(`{"dangling": {"a":1} trailing close }`)
		Expect(result.Candidates).To(Equal(1))
		Expect(result.Fragments).To(BeEmpty())
	})

	It("ignores stray closing braces", func() {
		result := b.Extract(`}} {"a":1}`)
		Expect(result.Fragments).To(HaveLen(1))
	})
})

var _ = Describe("Chain", func() {
	var chain *extract.Chain

	BeforeEach(func() {
		chain = extract.NewChain(extract.NewEnvelope(), extract.NewBraceScanner())
	})

	It("uses the primary strategy when it yields fragments", func() {
		blob := `{"root":{"a":1}} and also {"loose":2}`

		result := chain.Extract(blob)
		// Envelope wins: the loose object is not extracted.
		Expect(result.Fragments).To(HaveLen(1))
		Expect(result.Fragments[0]).To(HaveKey("root"))
	})

	It("recovers nested envelopes the regex truncates", func() {
		blob := `noise {"root":{"a":{"type":"text","text":"hi"}}} noise`

		result := chain.Extract(blob)
		Expect(result.Fragments).To(HaveLen(1))
		Expect(result.Fragments[0]).To(HaveKey("root"))
		Expect(extract.Harvest(result.Fragments[0])).To(Equal([]string{"hi"}))
	})

	It("falls back to the brace scanner when the envelope yields nothing", func() {
		blob := `binary-ish {"loose":{"a":1}} tail`

		result := chain.Extract(blob)
		Expect(result.Fragments).To(HaveLen(1))
		Expect(result.Fragments[0]).To(HaveKey("loose"))
	})

	It("names itself after both strategies", func() {
		Expect(chain.Name()).To(Equal("envelope+braces"))
	})
})

var _ = Describe("Harvest", func() {
	It("returns nothing for a fragment without text nodes", func() {
		frag := extract.Fragment{"root": map[string]any{"a": 1.0, "b": []any{"x"}}}
		Expect(extract.Harvest(frag)).To(BeEmpty())
	})

	It("collects the text of type:text nodes", func() {
		frag := extract.Fragment{
			"root": map[string]any{
				"a": map[string]any{"type": "text", "text": "hi"},
			},
		}
		Expect(extract.Harvest(frag)).To(Equal([]string{"hi"}))
	})

	It("finds text nodes at multiple depths", func() {
		frag := extract.Fragment{
			"type": "text",
			"text": "top",
			"children": []any{
				map[string]any{
					"wrapper": map[string]any{
						"inner": map[string]any{"type": "text", "text": "deep"},
					},
				},
			},
		}

		texts := extract.Harvest(frag)
		Expect(texts).To(ConsistOf("top", "deep"))
		// Depth-first: the containing node contributes before its children.
		Expect(texts[0]).To(Equal("top"))
	})

	It("ignores text fields without the type tag", func() {
		frag := extract.Fragment{"a": map[string]any{"text": "untagged"}}
		Expect(extract.Harvest(frag)).To(BeEmpty())
	})

	It("ignores type:text nodes whose text is not a string", func() {
		frag := extract.Fragment{"a": map[string]any{"type": "text", "text": 5.0}}
		Expect(extract.Harvest(frag)).To(BeEmpty())
	})

	It("is deterministic across calls", func() {
		frag := extract.Fragment{
			"b": map[string]any{"type": "text", "text": "two"},
			"a": map[string]any{"type": "text", "text": "one"},
		}

		first := extract.Harvest(frag)
		for range 10 {
			Expect(extract.Harvest(frag)).To(Equal(first))
		}
	})
})

var _ = Describe("HarvestGroups", func() {
	It("produces one group per fragment that yielded text", func() {
		frags := []extract.Fragment{
			{"root": map[string]any{"a": map[string]any{"type": "text", "text": "hi"}}},
			{"root": map[string]any{"empty": 1.0}},
			{"root": map[string]any{"b": map[string]any{"type": "text", "text": "yo"}}},
		}

		groups := extract.HarvestGroups(frags)
		Expect(groups).To(HaveLen(2))
		Expect(groups[0].ObjectIndex).To(Equal(0))
		Expect(groups[0].Texts).To(Equal([]string{"hi"}))
		Expect(groups[1].ObjectIndex).To(Equal(2))
		Expect(groups[1].Texts).To(Equal([]string{"yo"}))
	})
})
