package presets

import (
	"sort"
	"strconv"
	"strings"

	"github.com/orsinium-labs/stopwords"

	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// Proposal sources.
const (
	SourceInflection      = "inflection"
	SourceHyphen          = "hyphen"
	SourceBritishAmerican = "british_american"
)

// Candidate is one generated variant of a base term.
type Candidate struct {
	Term   string
	Source string
}

// Inflections returns a conservative, sorted set of inflected forms of term,
// including the lowercased term itself.
func Inflections(term string) []string {
	t := strings.ToLower(term)
	out := map[string]struct{}{t: {}}
	if strings.HasSuffix(t, "y") && len(t) > 3 {
		stem := t[:len(t)-1]
		out[stem+"ier"] = struct{}{}
		out[stem+"iest"] = struct{}{}
	}
	if strings.HasSuffix(t, "e") {
		out[t+"r"] = struct{}{}
		out[t+"st"] = struct{}{}
	}
	for _, suffix := range []string{"ed", "ing", "s"} {
		out[t+suffix] = struct{}{}
	}
	return sortedSet(out)
}

// HyphenSpaceVariants returns the term plus its hyphenated or spaced form.
// Spaces take precedence when a term holds both.
func HyphenSpaceVariants(term string) []string {
	t := strings.ToLower(term)
	switch {
	case strings.Contains(t, " "):
		return []string{t, strings.ReplaceAll(t, " ", "-")}
	case strings.Contains(t, "-"):
		return []string{t, strings.ReplaceAll(t, "-", " ")}
	}
	return []string{t}
}

// BritishAmerican returns the term plus its spelling counterpart in either
// direction of the map.
func BritishAmerican(term string, spelling map[string]string) []string {
	t := strings.ToLower(term)
	out := map[string]struct{}{t: {}}
	for br, am := range spelling {
		br, am = strings.ToLower(br), strings.ToLower(am)
		if t == br {
			out[am] = struct{}{}
		}
		if t == am {
			out[br] = struct{}{}
		}
	}
	return sortedSet(out)
}

// ApplyExtenders proposes variants for every term. A variant is proposed at
// most once across all terms and never when it equals (case-insensitively)
// an input term. Candidates of one term are ordered by source, then value.
func ApplyExtenders(terms []string, spelling map[string]string) map[string][]Candidate {
	proposals := make(map[string][]Candidate)
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		seen[strings.ToLower(t)] = struct{}{}
	}

	for _, base := range terms {
		var cands []Candidate
		add := func(source string, values []string) {
			for _, v := range values {
				cands = append(cands, Candidate{Term: v, Source: source})
			}
		}
		add(SourceInflection, Inflections(base))
		add(SourceHyphen, HyphenSpaceVariants(base))
		add(SourceBritishAmerican, BritishAmerican(base, spelling))
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].Source != cands[j].Source {
				return cands[i].Source < cands[j].Source
			}
			return cands[i].Term < cands[j].Term
		})

		for _, c := range cands {
			low := strings.ToLower(c.Term)
			if _, dup := seen[low]; dup {
				continue
			}
			proposals[base] = append(proposals[base], c)
			seen[low] = struct{}{}
		}
	}
	return proposals
}

// PresetSource looks presets up by key.
type PresetSource interface {
	Get(key string) (*preset.Preset, error)
}

// Extender builds lexicon extension proposals on top of an optional base
// preset.
type Extender struct {
	presets   PresetSource
	spelling  map[string]string
	stopwords *stopwords.Stopwords
}

// NewExtender creates an Extender. spelling is the British→American map.
func NewExtender(presets PresetSource, spelling map[string]string) *Extender {
	return &Extender{presets: presets, spelling: spelling, stopwords: stopwords.MustGet("en")}
}

// isStopword reports whether a single-word term is an English stopword.
// Such terms would fire on almost every narrative.
func (e *Extender) isStopword(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" || strings.ContainsAny(t, " -") {
		return false
	}
	return e.stopwords.Contains(t)
}

// ExtendLexicon merges the request's keywords and exceptions into the base
// preset's sections and proposes variants for every key whose name starts
// with one of req.Categories (all keys when none are given).
func (e *Extender) ExtendLexicon(req coding.ExtendRequest) (*coding.ExtendResult, error) {
	var baseLex, baseExc map[string][]string
	if req.BasePreset != "" {
		p, err := e.presets.Get(req.BasePreset)
		if err != nil {
			return nil, err
		}
		baseLex, baseExc = p.Lexicons, p.Exceptions
	}

	type entry struct {
		key       string
		terms     []string
		exception bool
	}
	var entries []entry
	for i, section := range []map[string][]string{
		mergeSection(baseLex, req.Keywords),
		mergeSection(baseExc, req.Exceptions),
	} {
		keys := make([]string, 0, len(section))
		for k := range section {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, entry{k, section[k], i == 1})
		}
	}

	res := &coding.ExtendResult{
		Proposed:  make(map[string][]coding.Proposal),
		Conflicts: []string{},
		Notes:     []string{},
	}
	for _, en := range entries {
		if !matchesCategory(en.key, req.Categories) {
			continue
		}
		seen := make(map[string]struct{}, len(en.terms))
		terms := make([]string, 0, len(en.terms))
		for _, t := range en.terms {
			seen[strings.ToLower(t)] = struct{}{}
			// Exception lists (hedges, negations) are made of stopwords.
			if !en.exception && e.isStopword(t) {
				res.Conflicts = append(res.Conflicts, en.key+": "+strconv.Quote(t)+" is a stopword; no variants proposed")
				continue
			}
			terms = append(terms, t)
		}
		var flat []coding.Proposal
		proposals := ApplyExtenders(terms, e.spelling)
		for _, base := range terms {
			for _, c := range proposals[base] {
				low := strings.ToLower(c.Term)
				if _, dup := seen[low]; dup {
					continue
				}
				flat = append(flat, coding.Proposal{Term: c.Term, Source: c.Source, Base: base})
				seen[low] = struct{}{}
			}
		}
		if len(flat) == 0 {
			continue
		}
		if _, clash := res.Proposed[en.key]; clash {
			res.Notes = append(res.Notes, "key "+en.key+" is both a lexicon and an exception key; exception proposals kept")
		}
		res.Proposed[en.key] = flat
	}
	return res, nil
}

// mergeSection copies base and unions extra into it; merged lists are sorted.
func mergeSection(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, vals := range extra {
		set := make(map[string]struct{}, len(out[k])+len(vals))
		for _, v := range out[k] {
			set[v] = struct{}{}
		}
		for _, v := range vals {
			set[v] = struct{}{}
		}
		out[k] = sortedSet(set)
	}
	return out
}

func matchesCategory(key string, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if strings.HasPrefix(key, c) {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
