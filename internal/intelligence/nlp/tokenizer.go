package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ---------------------------------------------------------------------------
// Rule tables
// ---------------------------------------------------------------------------

var determiners = setOf("a", "an", "the", "my", "your", "his", "her", "its", "our", "their")

var negations = setOf("no", "not", "n't", "never", "without", "none", "nothing", "neither", "nor")

var verbLemmas = setOf("feel", "pray", "hear", "see", "hold", "have", "call", "watch", "move", "ring", "mirror")

var adjLemmas = setOf("gross", "dizzy", "nauseous", "sweaty", "shaky", "cold", "warm")

var lemmaOverrides = map[string]string{
	"felt":      "feel",
	"prayed":    "pray",
	"heard":     "hear",
	"held":      "hold",
	"watched":   "watch",
	"ringing":   "ring",
	"mirroring": "mirror",
}

const contraction = "n't"

func setOf(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// IsDeterminer reports whether lower is one of the tagger's determiners.
func IsDeterminer(lower string) bool {
	_, ok := determiners[lower]
	return ok
}

// ---------------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------------

// Tokenize splits text into surface tokens. Every "n't" is split off as its
// own token, runs of ASCII letters and apostrophes form one token, and every
// other non-space rune stands alone.
func Tokenize(text string) []string {
	text = strings.ReplaceAll(text, contraction, " "+contraction+" ")

	var (
		out  []string
		word strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			out = append(out, word.String())
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case isWordRune(r):
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			out = append(out, string(r))
		}
	}
	flush()
	return out
}

func isWordRune(r rune) bool {
	return r == '\'' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Lemmatize returns the rule lemma of a surface token: the lowercase form with
// leading and trailing non-alphanumerics removed, passed through the override
// table. When stripping leaves nothing the lowercase form is returned.
func Lemmatize(text string) string {
	lower := strings.ToLower(text)
	base := strings.TrimFunc(lower, func(r rune) bool { return !isASCIIAlnum(r) })
	if base == "" {
		return lower
	}
	if o, ok := lemmaOverrides[base]; ok {
		return o
	}
	return base
}

// tagAt applies the priority list to token i. prevLower is the lowercase form
// of the previous token, empty at i == 0.
func tagAt(lower, prevLower string, i int) Tag {
	if _, ok := determiners[lower]; ok {
		return TagDET
	}
	if _, ok := negations[lower]; ok {
		return TagPART
	}
	if _, ok := adjLemmas[lower]; ok || strings.HasSuffix(lower, "y") {
		return TagADJ
	}
	if _, ok := verbLemmas[lower]; ok {
		if i > 0 && IsDeterminer(prevLower) {
			return TagNOUN
		}
		return TagVERB
	}
	return TagNOUN
}

// ---------------------------------------------------------------------------
// RulePipeline
// ---------------------------------------------------------------------------

// RulePipeline is the rule-based Pipeline. It holds no state and is safe for
// concurrent use.
type RulePipeline struct{}

// NewRulePipeline returns the rule-based Pipeline.
func NewRulePipeline() *RulePipeline { return &RulePipeline{} }

// Process tokenizes, lemmatizes and tags text.
func (p *RulePipeline) Process(text string) *Doc {
	text = norm.NFC.String(text)
	words := Tokenize(text)
	doc := &Doc{text: text, tokens: make([]Token, len(words))}
	prev := ""
	for i, w := range words {
		lower := strings.ToLower(w)
		doc.tokens[i] = Token{
			Index: i,
			Text:  w,
			Lower: lower,
			Lemma: Lemmatize(w),
			Tag:   tagAt(lower, prev, i),
		}
		prev = lower
	}
	return doc
}

// MakeDoc is Process; phrases are tagged the same way as analysed text.
func (p *RulePipeline) MakeDoc(text string) *Doc { return p.Process(text) }

var _ Pipeline = (*RulePipeline)(nil)

//Personal.AI order the ending
