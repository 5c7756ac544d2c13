package nlp

import "strings"

// Kind names the token attribute a constraint tests.
type Kind string

const (
	KindLemma Kind = "LEMMA"
	KindTag   Kind = "TAG"
	// KindPOS is accepted as an alias of KindTag.
	KindPOS   Kind = "POS"
	KindLower Kind = "LOWER"
)

// Expect is the expected value of one constraint: either an exact value or,
// when In is non-nil, membership in a set.
type Expect struct {
	Value string
	In    []string
}

// Eq expects exactly v.
func Eq(v string) Expect { return Expect{Value: v} }

// In expects any of vs. An empty set never matches.
func In(vs ...string) Expect {
	if vs == nil {
		vs = []string{}
	}
	return Expect{In: vs}
}

// Constraints is the set of conditions one token must satisfy.
type Constraints map[Kind]Expect

// Pattern is an ordered sequence of per-token constraints.
type Pattern []Constraints

// Match is one hit of a named pattern or phrase over tokens [Start, End).
type Match struct {
	Name  string
	Start int
	End   int
}

// ---------------------------------------------------------------------------
// compiled form
// ---------------------------------------------------------------------------

type check func(t *Token) bool

type compiledPattern struct {
	checks [][]check
	// broken is set when any constraint has an unsupported kind; such a
	// pattern never matches.
	broken bool
}

func compilePattern(p Pattern) compiledPattern {
	cp := compiledPattern{checks: make([][]check, len(p))}
	for i, cons := range p {
		for kind, exp := range cons {
			c := compileCheck(kind, exp)
			if c == nil {
				cp.broken = true
				continue
			}
			cp.checks[i] = append(cp.checks[i], c)
		}
	}
	return cp
}

func compileCheck(kind Kind, exp Expect) check {
	switch kind {
	case KindLemma:
		if exp.In != nil {
			set := make(map[string]struct{}, len(exp.In))
			for _, v := range exp.In {
				set[strings.ToLower(v)] = struct{}{}
			}
			return func(t *Token) bool {
				_, ok := set[strings.ToLower(t.Lemma)]
				return ok
			}
		}
		want := strings.ToLower(exp.Value)
		return func(t *Token) bool { return strings.ToLower(t.Lemma) == want }
	case KindTag, KindPOS:
		if exp.In != nil {
			set := setOf(exp.In...)
			return func(t *Token) bool {
				_, ok := set[string(t.Tag)]
				return ok
			}
		}
		want := exp.Value
		return func(t *Token) bool { return string(t.Tag) == want }
	case KindLower:
		if exp.In != nil {
			set := setOf(exp.In...)
			return func(t *Token) bool {
				_, ok := set[t.Lower]
				return ok
			}
		}
		want := strings.ToLower(exp.Value)
		return func(t *Token) bool { return t.Lower == want }
	default:
		return nil
	}
}

func (cp compiledPattern) matchAt(doc *Doc, start int) bool {
	for off, checks := range cp.checks {
		tok := &doc.tokens[start+off]
		for _, c := range checks {
			if !c(tok) {
				return false
			}
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Matcher
// ---------------------------------------------------------------------------

// Matcher finds every occurrence of named token patterns in a Doc.
// Registration is not safe for concurrent use; Match is, once registration is
// done.
type Matcher struct {
	names    []string
	patterns map[string][]compiledPattern
}

// NewMatcher returns an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{patterns: make(map[string][]compiledPattern)}
}

// Add appends patterns under name. A name keeps the position of its first
// registration in match output.
func (m *Matcher) Add(name string, patterns ...Pattern) {
	if _, ok := m.patterns[name]; !ok {
		m.names = append(m.names, name)
		m.patterns[name] = nil
	}
	for _, p := range patterns {
		m.patterns[name] = append(m.patterns[name], compilePattern(p))
	}
}

// Len returns the number of registered patterns across all names.
func (m *Matcher) Len() int {
	n := 0
	for _, ps := range m.patterns {
		n += len(ps)
	}
	return n
}

// Match reports all hits: names in registration order, patterns in insertion
// order, start positions left to right. Overlapping hits are all reported.
func (m *Matcher) Match(doc *Doc) []Match {
	var out []Match
	for _, name := range m.names {
		for _, cp := range m.patterns[name] {
			n := len(cp.checks)
			if n == 0 || cp.broken {
				continue
			}
			for start := 0; start+n <= doc.Len(); start++ {
				if cp.matchAt(doc, start) {
					out = append(out, Match{Name: name, Start: start, End: start + n})
				}
			}
		}
	}
	return out
}

//Personal.AI order the ending
