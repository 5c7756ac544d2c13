package nlp

import (
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
)

// Attr selects the token attribute the PhraseMatcher compares.
type Attr string

const (
	AttrLower Attr = "LOWER"
	AttrOrth  Attr = "ORTH"
)

// sep joins token attributes in the automaton haystack. Tokens never carry
// control characters, so a pattern can only match on token boundaries.
const sep = "\x1f"

// PhraseMatcher finds literal token sequences in a Doc. All phrases are
// compiled into one Aho-Corasick automaton, so a scan is linear in the
// document regardless of lexicon size.
type PhraseMatcher struct {
	attr    Attr
	names   []string
	phrases map[string][][]string

	ac *ahocorasick.Automaton
	// patternOf maps a phrase key to its automaton pattern id.
	patternOf map[string]int
}

// NewPhraseMatcher returns a PhraseMatcher comparing attr. Any value other
// than AttrOrth compares lowercase forms.
func NewPhraseMatcher(attr Attr) *PhraseMatcher {
	if attr != AttrOrth {
		attr = AttrLower
	}
	return &PhraseMatcher{attr: attr, phrases: make(map[string][][]string)}
}

func (pm *PhraseMatcher) value(t *Token) string {
	if pm.attr == AttrOrth {
		return t.Text
	}
	return t.Lower
}

func phraseKey(seq []string) string {
	return sep + strings.Join(seq, sep) + sep
}

// Add replaces the phrase list registered under name. Empty docs are
// ignored. Add is not safe for concurrent use; Match is, once registration
// is done.
func (pm *PhraseMatcher) Add(name string, docs ...*Doc) {
	if _, ok := pm.phrases[name]; !ok {
		pm.names = append(pm.names, name)
	}
	seqs := make([][]string, 0, len(docs))
	for _, d := range docs {
		if d == nil || d.Len() == 0 {
			continue
		}
		seq := make([]string, d.Len())
		for i := range d.tokens {
			seq[i] = pm.value(&d.tokens[i])
		}
		seqs = append(seqs, seq)
	}
	pm.phrases[name] = seqs
	pm.compile()
}

func (pm *PhraseMatcher) compile() {
	pm.ac, pm.patternOf = nil, make(map[string]int)
	var patterns []string
	for _, name := range pm.names {
		for _, seq := range pm.phrases[name] {
			key := phraseKey(seq)
			if _, ok := pm.patternOf[key]; ok {
				continue
			}
			pm.patternOf[key] = len(patterns)
			patterns = append(patterns, key)
		}
	}
	if len(patterns) == 0 {
		return
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetPrefilter(true).
		Build()
	if err != nil {
		// Match falls back to the token-by-token scan.
		return
	}
	pm.ac = ac
}

// Len returns the number of registered phrases across all names.
func (pm *PhraseMatcher) Len() int {
	n := 0
	for _, seqs := range pm.phrases {
		n += len(seqs)
	}
	return n
}

// Match reports every position where a registered phrase occurs: names in
// registration order, phrases in insertion order, starts left to right.
func (pm *PhraseMatcher) Match(doc *Doc) []Match {
	attrs := make([]string, doc.Len())
	for i := range doc.tokens {
		attrs[i] = pm.value(&doc.tokens[i])
	}
	if pm.ac == nil {
		return pm.scan(attrs)
	}

	// tokenAt maps the byte offset of the separator preceding a token to the
	// token index.
	var b strings.Builder
	tokenAt := make(map[int]int, len(attrs))
	for i, a := range attrs {
		tokenAt[b.Len()] = i
		b.WriteString(sep)
		b.WriteString(a)
	}
	b.WriteString(sep)

	starts := make(map[int][]int)
	for _, m := range pm.ac.FindAllOverlapping([]byte(b.String())) {
		if tok, ok := tokenAt[m.Start]; ok {
			starts[m.PatternID] = append(starts[m.PatternID], tok)
		}
	}
	for _, s := range starts {
		sort.Ints(s)
	}

	var out []Match
	for _, name := range pm.names {
		for _, seq := range pm.phrases[name] {
			for _, start := range starts[pm.patternOf[phraseKey(seq)]] {
				out = append(out, Match{Name: name, Start: start, End: start + len(seq)})
			}
		}
	}
	return out
}

func (pm *PhraseMatcher) scan(attrs []string) []Match {
	var out []Match
	for _, name := range pm.names {
		for _, seq := range pm.phrases[name] {
			for start := 0; start+len(seq) <= len(attrs); start++ {
				if equalSeq(attrs[start:start+len(seq)], seq) {
					out = append(out, Match{Name: name, Start: start, End: start + len(seq)})
				}
			}
		}
	}
	return out
}

func equalSeq(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
