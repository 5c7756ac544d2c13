// Package rules implements the explainable coding engine. An Engine is built
// once from a lexicon configuration, after which Analyze maps a text to a
// coding.Result whose every label carries the literal trigger that produced
// it. Engines are immutable after New and safe for concurrent use.
package rules

import (
	"strings"

	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/internal/intelligence/nlp"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// Registered pattern names.
const (
	PatternFeltAdj        = "FELT_ADJ"
	PatternFeltEpistemic  = "FELT_EPIST"
	PatternBodyNounCue    = "BODY_NOUN_CUE"
	PatternPresencePhrase = "PRESENCE_PHRASE"
)

const (
	idiomWindow    = 3
	negationWindow = 5
	confBase       = 1
	confMin        = 0
	confMax        = 3
)

type termSet map[string]struct{}

func newTermSet(lists ...[]string) termSet {
	s := make(termSet)
	for _, l := range lists {
		for _, t := range l {
			s[t] = struct{}{}
		}
	}
	return s
}

func (s termSet) has(t string) bool {
	_, ok := s[t]
	return ok
}

// Engine codes texts against one frozen lexicon.
type Engine struct {
	pipeline nlp.Pipeline
	matcher  *nlp.Matcher
	phraser  *nlp.PhraseMatcher

	supernatural termSet
	properNames  termSet
	idioms       []string
	negations    termSet
	epistemic    termSet
	hedges       termSet
	intensifiers termSet
	needDet      termSet

	presenceSingles termSet
	visual          termSet
	auditory        termSet
	tactile         termSet
	olfactory       termSet
	gustatory       termSet
	embodied        termSet
	motor           termSet
	postures        termSet
	objects         termSet
	valPositive     termSet
	valNegHigh      termSet
	valNegLow       termSet
	setting         termSet

	fingerprint string
}

// Option customises engine construction.
type Option func(*Engine)

// WithPipeline replaces the rule pipeline.
func WithPipeline(p nlp.Pipeline) Option {
	return func(e *Engine) {
		if p != nil {
			e.pipeline = p
		}
	}
}

// termReader pulls term lists out of a tree and keeps the first shape error.
type termReader struct {
	tree lexicon.Tree
	err  error
}

func (r *termReader) terms(path ...string) []string {
	t, err := r.tree.Terms(path...)
	if err != nil && r.err == nil {
		r.err = err
	}
	return t
}

func (r *termReader) flatten(key string) []string {
	t, err := r.tree.Flatten(key)
	if err != nil && r.err == nil {
		r.err = err
	}
	return t
}

// New builds an Engine from cfg. The returned engine is always usable. The
// error is non-nil when a lexicon section had the wrong shape (LEX_002) or
// when the lexicon fed none of the phrase and pattern registrations
// (LEX_001); such an engine still codes, with less signal.
func New(cfg lexicon.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		pipeline:    nlp.NewRulePipeline(),
		matcher:     nlp.NewMatcher(),
		phraser:     nlp.NewPhraseMatcher(nlp.AttrLower),
		fingerprint: cfg.Fingerprint(),
	}
	for _, opt := range opts {
		opt(e)
	}

	cats := &termReader{tree: cfg.Categories}
	excs := &termReader{tree: cfg.Exceptions}

	e.supernatural = newTermSet(cats.terms("agent", "supernatural_nouns"))
	e.properNames = newTermSet(excs.terms("proper_name_exceptions"))
	e.idioms = excs.terms("idiom_exclusions", "supernatural")
	e.negations = newTermSet(excs.terms("negations"))
	epistemic := excs.terms("epistemic_complements")
	e.epistemic = newTermSet(epistemic)
	e.hedges = newTermSet(excs.terms("hedges"))
	e.intensifiers = newTermSet(excs.terms("intensifiers"))
	e.needDet = newTermSet(excs.terms("objects_require_determiner"))

	var phrases []*nlp.Doc
	e.presenceSingles = make(termSet)
	for _, p := range cats.terms("presence", "types") {
		if strings.Contains(p, " ") {
			phrases = append(phrases, e.pipeline.MakeDoc(p))
			continue
		}
		e.presenceSingles[p] = struct{}{}
	}
	e.phraser.Add(PatternPresencePhrase, phrases...)

	bodyNouns := append(append(
		cats.terms("bodystate", "respiratory"),
		cats.terms("bodystate", "cardio")...),
		cats.terms("bodystate", "general_state")...)

	e.matcher.Add(PatternFeltAdj, nlp.Pattern{
		{nlp.KindLemma: nlp.Eq("feel")},
		{nlp.KindTag: nlp.Eq(string(nlp.TagADJ))},
	})
	e.matcher.Add(PatternFeltEpistemic, nlp.Pattern{
		{nlp.KindLemma: nlp.Eq("feel")},
		{nlp.KindLower: nlp.In(epistemic...)},
	})
	e.matcher.Add(PatternBodyNounCue, nlp.Pattern{
		{nlp.KindTag: nlp.Eq(string(nlp.TagDET))},
		{nlp.KindLemma: nlp.In(bodyNouns...)},
	})

	e.visual = newTermSet(cats.flatten("visual"))
	e.auditory = newTermSet(cats.flatten("auditory"))
	e.tactile = newTermSet(cats.terms("tactile", "adjectives"), cats.terms("tactile", "verbs"))
	e.olfactory = newTermSet(cats.terms("olfactory", "smells"))
	e.gustatory = newTermSet(cats.terms("gustatory", "tastes"))
	e.embodied = newTermSet(cats.terms("bodystate", "evaluative_embodied_adjs"))

	postures := cats.terms("motor", "postures")
	e.postures = newTermSet(postures)
	e.motor = newTermSet(postures, cats.terms("motor", "movements"))

	e.objects = newTermSet(cats.terms("object", "sacred_objects"), cats.terms("object", "ordinary"))

	e.valPositive = newTermSet(
		cats.terms("valence", "awe"),
		cats.terms("valence", "reverence"),
		cats.terms("valence", "peace"),
		cats.terms("valence", "comfort"),
		cats.terms("valence", "ecstasy"),
		cats.terms("valence", "positive_low_arousal"),
	)
	e.valNegHigh = newTermSet(cats.terms("valence", "negative_high_arousal"))
	e.valNegLow = newTermSet(cats.terms("valence", "negative_low_arousal"))

	e.setting = newTermSet(
		cats.terms("setting", "structural"),
		cats.terms("setting", "sacred_tokens"),
		cats.terms("setting", "liminal"),
	)

	if cats.err != nil {
		return e, cats.err
	}
	if excs.err != nil {
		return e, excs.err
	}
	if len(phrases) == 0 && len(bodyNouns) == 0 && len(epistemic) == 0 {
		return e, errors.New(errors.ErrCodeLexiconIncomplete,
			"lexicon has no multi-word presence types, body nouns or epistemic complements")
	}
	return e, nil
}

// Fingerprint returns the identity of the configuration the engine was built
// from.
func (e *Engine) Fingerprint() string { return e.fingerprint }

// Pipeline returns the pipeline the engine tokenizes with.
func (e *Engine) Pipeline() nlp.Pipeline { return e.pipeline }

//Personal.AI order the ending
