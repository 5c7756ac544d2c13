// Package lexicon holds the read-only category and exception trees the coding
// engine is configured with, plus the helpers that read term lists out of
// them. Both trees are free-form nested maps as decoded from YAML or JSON;
// every accessor tolerates missing keys so a partial lexicon degrades to
// empty term lists instead of failing.
package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/TextCoder/pkg/errors"
)

// Tree is a nested mapping of section names to sub-trees or term lists.
type Tree map[string]any

// Config is the pair of trees one engine is built from.
type Config struct {
	Categories Tree `json:"categories" yaml:"categories"`
	Exceptions Tree `json:"exceptions" yaml:"exceptions"`
}

// Clone returns a deep copy of both trees.
func (c Config) Clone() Config {
	return Config{Categories: c.Categories.Clone(), Exceptions: c.Exceptions.Clone()}
}

// Fingerprint identifies the configuration by content: two configs with the
// same terms in the same places share a fingerprint. encoding/json sorts map
// keys, which makes the encoding canonical.
func (c Config) Fingerprint() string {
	raw, err := json.Marshal(c)
	if err != nil {
		// Trees only ever hold decoded YAML/JSON values.
		raw = []byte(fmt.Sprintf("%v", c))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// NormalizeTerm prepares a configured term for comparison with token
// lemmas and lowercase forms.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────────────────

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Tree:
		return m, true
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// Node returns the raw value at path, or nil when any step is missing or is
// not a mapping.
func (t Tree) Node(path ...string) any {
	var cur any = t
	for _, p := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur, ok = m[p]
		if !ok {
			return nil
		}
	}
	return cur
}

func malformed(path []string, got any) *errors.AppError {
	return errors.New(errors.ErrCodeLexiconMalformed, "lexicon section is not a list of terms").
		WithDetail(fmt.Sprintf("path=%s type=%T", strings.Join(path, "."), got))
}

func termList(v any, path []string) ([]string, error) {
	var (
		out []string
		bad error
	)
	add := func(s string) {
		if n := NormalizeTerm(s); n != "" {
			out = append(out, n)
		}
	}
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		for _, s := range list {
			add(s)
		}
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				bad = malformed(path, item)
				continue
			}
			add(s)
		}
	default:
		return nil, malformed(path, v)
	}
	return dedup(out), bad
}

// Terms returns the normalised term list at path. A missing path yields an
// empty list and no error; a value of the wrong shape yields the usable part
// of it and a LEX_002 error.
func (t Tree) Terms(path ...string) ([]string, error) {
	return termList(t.Node(path...), path)
}

// Flatten returns the union of every term list directly below key, visiting
// sub-keys in sorted order. A list stored at key itself is returned as is.
func (t Tree) Flatten(key string) ([]string, error) {
	node := t.Node(key)
	m, ok := asMap(node)
	if !ok {
		return termList(node, []string{key})
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		out      []string
		firstErr error
	)
	for _, k := range keys {
		terms, err := termList(m[k], []string{key, k})
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, terms...)
	}
	return dedup(out), firstErr
}

// Clone deep-copies the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return Tree{}
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = cloneValue(val)
		}
		return out
	}
	switch list := v.(type) {
	case []any:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), list...)
	}
	return v
}

func dedup(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
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
