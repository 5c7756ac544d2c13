// Package nlp provides the lightweight tokenizer, rule tagger and literal
// matchers the coding engine runs on. There is no statistical model behind
// it: every tag and lemma comes from a small fixed rule table, so the same
// text always yields the same Doc.
package nlp

import "strings"

// Tag is the coarse part-of-speech tag assigned by the rule tagger.
type Tag string

const (
	TagDET  Tag = "DET"
	TagNOUN Tag = "NOUN"
	TagVERB Tag = "VERB"
	TagADJ  Tag = "ADJ"
	TagPART Tag = "PART"
	TagNone Tag = ""
)

// Token is one unit of a Doc. Tokens are immutable once the Doc is built.
type Token struct {
	Index int    `json:"i"`
	Text  string `json:"text"`
	Lower string `json:"lower"`
	Lemma string `json:"lemma"`
	Tag   Tag    `json:"tag"`
}

// Doc is the ordered token sequence of one input text.
type Doc struct {
	text   string
	tokens []Token
}

// Text returns the text the Doc was built from.
func (d *Doc) Text() string { return d.text }

// Len returns the number of tokens.
func (d *Doc) Len() int { return len(d.tokens) }

// Token returns the token at position i. It panics when i is out of range,
// like a slice index would.
func (d *Doc) Token(i int) Token { return d.tokens[i] }

// Tokens returns the token slice. Callers must not modify it.
func (d *Doc) Tokens() []Token { return d.tokens }

// Span returns the view over tokens [start, end). Bounds are clamped to the
// Doc so window arithmetic at the edges never panics.
func (d *Doc) Span(start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end > len(d.tokens) {
		end = len(d.tokens)
	}
	if end < start {
		end = start
	}
	return Span{doc: d, Start: start, End: end}
}

// Span is a contiguous, non-copying view over a Doc.
type Span struct {
	doc   *Doc
	Start int
	End   int
}

// Len returns the number of tokens in the span.
func (s Span) Len() int { return s.End - s.Start }

// Tokens returns the tokens covered by the span.
func (s Span) Tokens() []Token {
	if s.doc == nil {
		return nil
	}
	return s.doc.tokens[s.Start:s.End]
}

// Text joins the surface forms of the span with single spaces.
func (s Span) Text() string {
	toks := s.Tokens()
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Pipeline turns raw text into a tagged Doc.
type Pipeline interface {
	// Process tokenizes and tags text.
	Process(text string) *Doc
	// MakeDoc builds the Doc used for phrase registration. It must tokenize
	// exactly like Process so phrases line up with analysed text.
	MakeDoc(text string) *Doc
}

//Personal.AI order the ending
