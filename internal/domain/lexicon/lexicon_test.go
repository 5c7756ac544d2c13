package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TextCoder/pkg/errors"
)

func sampleTree() Tree {
	return Tree{
		"agent": map[string]any{
			"supernatural_nouns": []any{"God", " angel ", "god", ""},
		},
		"visual": map[string]any{
			"seeing": []any{"saw"},
			"light":  []any{"glow", "saw"},
		},
		"broken": map[string]any{
			"list": "not-a-list",
			"mixed": []any{"ok", 3},
		},
	}
}

func TestTree_Terms(t *testing.T) {
	tree := sampleTree()

	terms, err := tree.Terms("agent", "supernatural_nouns")
	require.NoError(t, err)
	assert.Equal(t, []string{"god", "angel"}, terms, "normalised, blank dropped, deduplicated")

	terms, err = tree.Terms("agent", "missing")
	require.NoError(t, err)
	assert.Empty(t, terms)

	terms, err = tree.Terms("nothing", "here", "at", "all")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestTree_TermsMalformed(t *testing.T) {
	tree := sampleTree()

	terms, err := tree.Terms("broken", "list")
	assert.Empty(t, terms)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLexiconMalformed))

	terms, err = tree.Terms("broken", "mixed")
	assert.Equal(t, []string{"ok"}, terms, "usable part is kept")
	assert.True(t, errors.IsCode(err, errors.ErrCodeLexiconMalformed))

	// Walking through a list as if it were a section is just missing.
	terms, err = tree.Terms("agent", "supernatural_nouns", "deeper")
	assert.NoError(t, err)
	assert.Empty(t, terms)
}

func TestTree_Flatten(t *testing.T) {
	tree := sampleTree()

	terms, err := tree.Flatten("visual")
	require.NoError(t, err)
	assert.Equal(t, []string{"glow", "saw"}, terms, "sub-keys visited in sorted order")

	terms, err = tree.Flatten("absent")
	require.NoError(t, err)
	assert.Empty(t, terms)

	flat := Tree{"auditory": []any{"Voice"}}
	terms, err = flat.Flatten("auditory")
	require.NoError(t, err)
	assert.Equal(t, []string{"voice"}, terms)
}

func TestTree_MergeDotted(t *testing.T) {
	tree := Tree{"valence": map[string]any{"awe": []any{"awe", "wonder"}}}

	tree.MergeDotted("valence.awe", []any{"wonder", "marvel"})
	tree.MergeDotted("setting.liminal", []any{"threshold"})
	tree.MergeDotted("valence.awe.extra", []any{"x"})

	terms, _ := Tree{"v": tree.Node("setting")}.Flatten("v")
	assert.Equal(t, []string{"threshold"}, terms)

	// A list replaced by a section when a deeper key is merged through it.
	assert.Equal(t, []any{"x"}, tree.Node("valence", "awe", "extra"))

	tree2 := Tree{"presence": map[string]any{"types": []any{"ghost"}}}
	tree2.MergeDotted("presence.types", []any{"ghost", "cold spot"})
	assert.Equal(t, []any{"ghost", "cold spot"}, tree2.Node("presence", "types"))

	tree2.MergeDotted("presence.types", "scalar")
	assert.Equal(t, "scalar", tree2.Node("presence", "types"))
}

func TestOverlay_DoesNotMutateBase(t *testing.T) {
	base := Tree{"object": map[string]any{"sacred_objects": []any{"cross"}}}
	out := Overlay(base, map[string][]string{"object.sacred_objects": {"chalice"}})

	assert.Equal(t, []any{"cross"}, base.Node("object", "sacred_objects"))
	assert.Equal(t, []any{"cross", "chalice"}, out.Node("object", "sacred_objects"))
}

func TestConfig_FingerprintIsContentBased(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Categories.MergeDotted("agent.supernatural_nouns", []any{"djinn"})
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := a.Clone()
	c.Exceptions.MergeDotted("hedges", []any{"arguably"})
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint(), "clone is independent")
	assert.Equal(t, Default().Fingerprint(), a.Fingerprint())
}

func TestDefault_HasEveryEngineSection(t *testing.T) {
	cfg := Default()

	for _, path := range [][]string{
		{"agent", "supernatural_nouns"},
		{"presence", "types"},
		{"bodystate", "respiratory"},
		{"bodystate", "cardio"},
		{"bodystate", "general_state"},
		{"bodystate", "evaluative_embodied_adjs"},
		{"olfactory", "smells"},
		{"gustatory", "tastes"},
		{"tactile", "adjectives"},
		{"motor", "postures"},
		{"object", "sacred_objects"},
		{"valence", "negative_high_arousal"},
		{"setting", "liminal"},
	} {
		terms, err := cfg.Categories.Terms(path...)
		assert.NoError(t, err, path)
		assert.NotEmpty(t, terms, path)
	}

	negs, err := cfg.Exceptions.Terms("negations")
	require.NoError(t, err)
	assert.Contains(t, negs, "n't")

	guard, _ := cfg.Exceptions.Terms("objects_require_determiner")
	assert.Contains(t, guard, "ring")
	assert.Contains(t, guard, "mirror")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cats := filepath.Join(dir, "categories.yaml")
	require.NoError(t, os.WriteFile(cats, []byte("agent:\n  supernatural_nouns: [djinn]\n"), 0o644))

	cfg, err := Load(cats, "")
	require.NoError(t, err)
	terms, _ := cfg.Categories.Terms("agent", "supernatural_nouns")
	assert.Equal(t, []string{"djinn"}, terms)

	negs, _ := cfg.Exceptions.Terms("negations")
	assert.NotEmpty(t, negs, "exceptions fall back to the built-in tree")

	_, err = Load(filepath.Join(dir, "missing.yaml"), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeLexiconLoadFailed))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("agent: [unclosed"), 0o644))
	_, err = Load("", bad)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLexiconLoadFailed))
}

func TestLoadSpellingMap(t *testing.T) {
	m, err := LoadSpellingMap("")
	require.NoError(t, err)
	assert.Equal(t, "color", m["colour"])

	m, err = LoadSpellingMap(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, m)

	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte("armour: armor\n"), 0o644))
	m, err = LoadSpellingMap(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"armour": "armor"}, m)
}

//Personal.AI order the ending
