package lexicon

import (
	"fmt"
	"strings"
)

// MergeDotted overlays values onto the tree at a dotted key such as
// "valence.awe". Intermediate sections are created as needed (a non-mapping
// in the way is replaced). When both the existing value and values are lists
// the result is their union in first-seen order; otherwise values replaces
// whatever was there.
func (t Tree) MergeDotted(dotted string, values any) {
	parts := strings.Split(dotted, ".")
	cursor := map[string]any(t)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cursor[part])
		if !ok {
			next = make(map[string]any)
		}
		cursor[part] = next
		cursor = next
	}
	leaf := parts[len(parts)-1]

	existing, okOld := toAnyList(cursor[leaf])
	incoming, okNew := toAnyList(values)
	if !okOld || !okNew {
		cursor[leaf] = values
		return
	}
	merged := make([]any, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, cap(merged))
	for _, v := range append(existing, incoming...) {
		key := fmt.Sprintf("%T:%v", v, v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, v)
	}
	cursor[leaf] = merged
}

// Overlay applies every dotted key of a preset section onto a copy of base.
func Overlay(base Tree, section map[string][]string) Tree {
	out := base.Clone()
	for _, key := range sortedKeys(section) {
		vals := make([]any, len(section[key]))
		for i, v := range section[key] {
			vals[i] = v
		}
		out.MergeDotted(key, vals)
	}
	return out
}

func toAnyList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

//Personal.AI order the ending
