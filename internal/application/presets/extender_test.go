package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

func TestInflections(t *testing.T) {
	assert.Equal(t, []string{"dizzier", "dizziest", "dizzy", "dizzyed", "dizzying", "dizzys"},
		Inflections("Dizzy"))
	assert.Equal(t, []string{"pale", "paleed", "paleing", "paler", "pales", "palest"}, Inflections("pale"))
	// Short -y words do not get comparatives.
	assert.NotContains(t, Inflections("shy"), "shier")
}

func TestHyphenSpaceVariants(t *testing.T) {
	assert.Equal(t, []string{"cold spot", "cold-spot"}, HyphenSpaceVariants("Cold Spot"))
	assert.Equal(t, []string{"near-death", "near death"}, HyphenSpaceVariants("near-death"))
	assert.Equal(t, []string{"ghost"}, HyphenSpaceVariants("ghost"))
}

func TestBritishAmerican(t *testing.T) {
	m := map[string]string{"colour": "color"}
	assert.Equal(t, []string{"color", "colour"}, BritishAmerican("colour", m))
	assert.Equal(t, []string{"color", "colour"}, BritishAmerican("Color", m))
	assert.Equal(t, []string{"grey"}, BritishAmerican("grey", m))
}

func TestApplyExtenders(t *testing.T) {
	got := ApplyExtenders([]string{"dizzy"}, nil)
	terms := map[string]bool{}
	for _, c := range got["dizzy"] {
		terms[c.Term] = true
		assert.Equal(t, SourceInflection, c.Source)
	}
	assert.True(t, terms["dizzier"])
	assert.True(t, terms["dizziest"])
	assert.False(t, terms["dizzy"])

	spelled := ApplyExtenders([]string{"color"}, map[string]string{"color": "colour"})
	var found bool
	for _, c := range spelled["color"] {
		if c.Term == "colour" {
			found = true
			assert.Equal(t, SourceBritishAmerican, c.Source)
		}
	}
	assert.True(t, found)
}

func TestApplyExtenders_NoCrossTermDuplicates(t *testing.T) {
	got := ApplyExtenders([]string{"glow", "glows"}, nil)
	for _, c := range got["glow"] {
		assert.NotEqual(t, "glows", c.Term)
	}
	seen := map[string]bool{}
	for _, base := range []string{"glow", "glows"} {
		for _, c := range got[base] {
			assert.False(t, seen[c.Term], c.Term)
			seen[c.Term] = true
		}
	}
}

type stubPresets map[string]*preset.Preset

func (s stubPresets) Get(key string) (*preset.Preset, error) {
	if p, ok := s[key]; ok {
		return p, nil
	}
	return nil, errors.New(errors.ErrCodePresetNotFound, "Unknown preset "+key)
}

func TestExtendLexicon(t *testing.T) {
	src := stubPresets{"base@1": {
		Meta:     preset.Meta{Name: "base", Version: "1"},
		Lexicons: map[string][]string{"valence.awe": {"vast"}, "setting.liminal": {"doorway"}},
	}}
	ext := NewExtender(src, nil)

	res, err := ext.ExtendLexicon(coding.ExtendRequest{
		BasePreset: "base@1",
		Categories: []string{"valence"},
		Keywords:   map[string][]string{"valence.awe": {"Glow"}},
	})
	require.NoError(t, err)
	require.Contains(t, res.Proposed, "valence.awe")
	assert.NotContains(t, res.Proposed, "setting.liminal")
	assert.Empty(t, res.Conflicts)

	bases := map[string]bool{}
	for _, p := range res.Proposed["valence.awe"] {
		bases[p.Base] = true
		assert.NotEqual(t, "vast", p.Term)
	}
	assert.True(t, bases["Glow"])
	assert.True(t, bases["vast"])
}

func TestExtendLexicon_NoCategoriesMeansAll(t *testing.T) {
	ext := NewExtender(stubPresets{}, nil)
	res, err := ext.ExtendLexicon(coding.ExtendRequest{
		Keywords:   map[string][]string{"visual.light": {"glow"}},
		Exceptions: map[string][]string{"hedges": {"arguably"}},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Proposed, "visual.light")
	assert.Contains(t, res.Proposed, "hedges")
}

func TestExtendLexicon_StopwordsAreReported(t *testing.T) {
	res, err := NewExtender(stubPresets{}, nil).ExtendLexicon(coding.ExtendRequest{
		Keywords: map[string][]string{"agent.supernatural_nouns": {"The", "angel"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Contains(t, res.Conflicts[0], `"The" is a stopword`)
	for _, p := range res.Proposed["agent.supernatural_nouns"] {
		assert.Equal(t, "angel", p.Base)
	}
	assert.NotEmpty(t, res.Proposed["agent.supernatural_nouns"])
}

func TestExtendLexicon_ExceptionStopwordsStillExtended(t *testing.T) {
	res, err := NewExtender(stubPresets{}, nil).ExtendLexicon(coding.ExtendRequest{
		Categories: []string{"hedges"},
		Exceptions: map[string][]string{"hedges": {"maybe"}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	require.NotEmpty(t, res.Proposed["hedges"])
	assert.Equal(t, "maybe", res.Proposed["hedges"][0].Base)
}

func TestExtendLexicon_UnknownBasePreset(t *testing.T) {
	_, err := NewExtender(stubPresets{}, nil).ExtendLexicon(coding.ExtendRequest{BasePreset: "nope@1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePresetNotFound))
}

func TestExtendLexicon_KeyCollisionNote(t *testing.T) {
	res, err := NewExtender(stubPresets{}, nil).ExtendLexicon(coding.ExtendRequest{
		Keywords:   map[string][]string{"valence.awe": {"vast"}},
		Exceptions: map[string][]string{"valence.awe": {"perhaps"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, "perhaps", res.Proposed["valence.awe"][0].Base)
}

//Personal.AI order the ending
