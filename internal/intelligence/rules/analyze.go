package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/TextCoder/internal/intelligence/nlp"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// Analyze codes text on every dimension. It never fails: an empty text
// yields zero labels, empty reasons and the base confidence.
func (e *Engine) Analyze(text string) coding.Result {
	return e.AnalyzeDoc(e.pipeline.Process(text))
}

// AnalyzeDoc codes an already processed Doc.
func (e *Engine) AnalyzeDoc(doc *nlp.Doc) coding.Result {
	var r coding.Result
	conf := e.confidence(doc)

	r.AgentSupernatural, r.ReasonAgent = e.codeAgent(doc)
	r.PresenceLabel, r.ReasonPresence = e.codePresence(doc)
	r.Visual, r.ReasonVisual = e.codeLexical(doc, e.visual)
	r.Auditory, r.ReasonAuditory = e.codeLexical(doc, e.auditory)
	r.Tactile, r.ReasonTactile = e.codeLexical(doc, e.tactile)
	r.Olfactory, r.ReasonOlfactory = e.codeLexical(doc, e.olfactory)
	r.Gustatory, r.ReasonGustatory = e.codeLexical(doc, e.gustatory)
	r.Sensorimotor, r.ReasonSensorimotor = e.codeSensorimotor(doc)
	r.Conf = conf
	r.Motor, r.ReasonMotor = e.codeMotor(doc)
	r.Object, r.ReasonObject = e.codeObjects(doc)
	r.ValenceLabel, r.ReasonValence = e.codeValence(doc)
	r.SettingHits, r.ReasonSetting = e.codeSetting(doc)
	return r
}

// ---------------------------------------------------------------------------
// Dimensions
// ---------------------------------------------------------------------------

func (e *Engine) codeAgent(doc *nlp.Doc) (int, string) {
	for _, tok := range doc.Tokens() {
		if e.properNames.has(tok.Lower) {
			continue
		}
		lem := strings.ToLower(tok.Lemma)
		if tok.Tag != nlp.TagNOUN || !e.supernatural.has(lem) {
			continue
		}
		if e.nearIdiom(doc, tok.Index) {
			continue
		}
		return 1, fmt.Sprintf("lemma=%s, tag=%s", lem, tok.Tag)
	}
	return 0, ""
}

func (e *Engine) codePresence(doc *nlp.Doc) (string, string) {
	var hits []string
	for _, m := range e.phraser.Match(doc) {
		hits = append(hits, doc.Span(m.Start, m.End).Text())
	}
	for _, tok := range doc.Tokens() {
		if e.presenceSingles.has(strings.ToLower(tok.Lemma)) {
			hits = append(hits, tok.Text)
		}
	}
	hits = firstSeen(hits)
	if len(hits) == 0 {
		return "", ""
	}
	return strings.Join(hits, ";"), "phrase"
}

// codeLexical is shared by the visual, auditory, tactile, olfactory and
// gustatory dimensions.
func (e *Engine) codeLexical(doc *nlp.Doc, set termSet) (int, string) {
	var hits []string
	for _, tok := range doc.Tokens() {
		if set.has(strings.ToLower(tok.Lemma)) || set.has(tok.Lower) {
			hits = append(hits, tok.Lemma)
		}
	}
	return flag(hits), sortedJoin(hits)
}

func (e *Engine) codeSensorimotor(doc *nlp.Doc) (int, string) {
	matches := e.matcher.Match(doc)
	names := make(map[string]bool, len(matches))
	for _, m := range matches {
		names[m.Name] = true
	}

	// Epistemic "felt like / felt that" overrides everything else.
	if names[PatternFeltEpistemic] {
		return 0, "epistemic_felt"
	}
	for _, m := range matches {
		if m.Name != PatternFeltAdj {
			continue
		}
		adj := doc.Token(m.Start + 1)
		lem := strings.ToLower(adj.Lemma)
		if e.embodied.has(lem) && !e.isNegated(doc, adj.Index) {
			return 1, "felt+" + lem
		}
	}
	if names[PatternBodyNounCue] {
		return 1, "body_noun_context"
	}
	return 0, ""
}

func (e *Engine) codeMotor(doc *nlp.Doc) (int, string) {
	var hits []string
	for _, tok := range doc.Tokens() {
		lem := strings.ToLower(tok.Lemma)
		if !e.motor.has(lem) {
			continue
		}
		if tok.Tag == nlp.TagVERB || e.postures.has(lem) {
			hits = append(hits, lem)
		}
	}
	return flag(hits), sortedJoin(hits)
}

func (e *Engine) codeObjects(doc *nlp.Doc) (int, string) {
	var hits []string
	for _, tok := range doc.Tokens() {
		lem := strings.ToLower(tok.Lemma)
		if tok.Tag != nlp.TagNOUN || !e.objects.has(lem) {
			continue
		}
		if !e.determinerOK(doc, tok.Index) {
			continue
		}
		hits = append(hits, lem)
	}
	return flag(hits), sortedJoin(hits)
}

const (
	ValenceNegativeHigh = "negative_high_arousal"
	ValenceNegativeLow  = "negative_low_arousal"
	ValencePositive     = "positive"
)

func (e *Engine) codeValence(doc *nlp.Doc) (string, string) {
	var pos, negHigh, negLow []string
	for _, tok := range doc.Tokens() {
		w := strings.ToLower(tok.Lemma)
		if e.valPositive.has(w) {
			pos = append(pos, w)
		}
		if e.valNegHigh.has(w) {
			negHigh = append(negHigh, w)
		}
		if e.valNegLow.has(w) {
			negLow = append(negLow, w)
		}
	}
	label := ""
	switch {
	case len(negHigh) > 0:
		label = ValenceNegativeHigh
	case len(negLow) > 0:
		label = ValenceNegativeLow
	case len(pos) > 0:
		label = ValencePositive
	}
	all := append(append(pos, negHigh...), negLow...)
	return label, sortedJoin(all)
}

// codeSetting always reports "lex" as its reason, hits or not.
func (e *Engine) codeSetting(doc *nlp.Doc) (string, string) {
	var hits []string
	for _, tok := range doc.Tokens() {
		lem := strings.ToLower(tok.Lemma)
		if e.setting.has(lem) {
			hits = append(hits, lem)
		}
	}
	return sortedJoin(hits), "lex"
}

// ---------------------------------------------------------------------------
// Guards and modifiers
// ---------------------------------------------------------------------------

// nearIdiom reports whether the lowercase text of the ±idiomWindow span
// around token i contains a configured idiom.
func (e *Engine) nearIdiom(doc *nlp.Doc, i int) bool {
	if len(e.idioms) == 0 {
		return false
	}
	span := strings.ToLower(doc.Span(i-idiomWindow, i+idiomWindow+1).Text())
	for _, idiom := range e.idioms {
		if strings.Contains(span, idiom) {
			return true
		}
	}
	return false
}

// isNegated checks the token itself (its subtree, without a parser) and the
// symmetric ±negationWindow span around it.
func (e *Engine) isNegated(doc *nlp.Doc, i int) bool {
	if e.negations.has(doc.Token(i).Lower) {
		return true
	}
	for _, tok := range doc.Span(i-negationWindow, i+negationWindow+1).Tokens() {
		if e.negations.has(tok.Lower) {
			return true
		}
	}
	return false
}

// confidence is base + intensifiers − hedges, clamped to [0, 3].
func (e *Engine) confidence(doc *nlp.Doc) int {
	c := confBase
	for _, tok := range doc.Tokens() {
		lem := strings.ToLower(tok.Lemma)
		if e.intensifiers.has(lem) {
			c++
		}
		if e.hedges.has(lem) {
			c--
		}
	}
	if c < confMin {
		return confMin
	}
	if c > confMax {
		return confMax
	}
	return c
}

// determinerOK passes objects that do not need a determiner, and those that
// do when the previous token is tagged DET.
func (e *Engine) determinerOK(doc *nlp.Doc, i int) bool {
	if !e.needDet.has(strings.ToLower(doc.Token(i).Lemma)) {
		return true
	}
	return i > 0 && doc.Token(i-1).Tag == nlp.TagDET
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func flag(hits []string) int {
	if len(hits) > 0 {
		return 1
	}
	return 0
}

func sortedJoin(hits []string) string {
	if len(hits) == 0 {
		return ""
	}
	uniq := firstSeen(hits)
	sort.Strings(uniq)
	return strings.Join(uniq, ",")
}

func firstSeen(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

//Personal.AI order the ending
