package extract

import "sort"

// TextGroup collects the texts harvested from one fragment, tagged with the
// fragment's position in the extraction output. Only fragments that yielded
// at least one text produce a group.
type TextGroup struct {
	ObjectIndex int      `json:"object_index"`
	Texts       []string `json:"texts"`
}

// Harvest walks the fragment depth-first and collects the text of every
// mapping node carrying type == "text" with a sibling text field. Traversal
// continues into every value and sequence element regardless of whether the
// current node contributed, so nested text nodes at arbitrary depth are all
// discovered.
//
// Object keys are visited in sorted order so the output is deterministic
// (parsed JSON maps carry no key order in Go).
func Harvest(frag Fragment) []string {
	var texts []string
	harvestNode(map[string]any(frag), &texts)
	return texts
}

// HarvestGroups harvests every fragment and returns one TextGroup per
// fragment that yielded at least one text.
func HarvestGroups(frags []Fragment) []TextGroup {
	var groups []TextGroup
	for idx, frag := range frags {
		texts := Harvest(frag)
		if len(texts) == 0 {
			continue
		}
		groups = append(groups, TextGroup{ObjectIndex: idx, Texts: texts})
	}

	return groups
}

func harvestNode(node any, texts *[]string) {
	switch n := node.(type) {
	case map[string]any:
		if kind, ok := n["type"].(string); ok && kind == "text" {
			if text, ok := n["text"].(string); ok {
				*texts = append(*texts, text)
			}
		}

		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			harvestNode(n[k], texts)
		}
	case []any:
		for _, item := range n {
			harvestNode(item, texts)
		}
	}
}
