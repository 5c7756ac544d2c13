package lexicon

import (
	"embed"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/TextCoder/pkg/errors"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

const (
	defaultCategoriesFile = "defaults/categories.yaml"
	defaultExceptionsFile = "defaults/exceptions.yaml"
	defaultSpellingFile   = "defaults/british_american.yaml"
)

// Default returns the built-in lexicon.
func Default() Config {
	cats, err := decodeTree(mustRead(defaultCategoriesFile))
	if err != nil {
		panic(err)
	}
	excs, err := decodeTree(mustRead(defaultExceptionsFile))
	if err != nil {
		panic(err)
	}
	return Config{Categories: cats, Exceptions: excs}
}

// DefaultSpellingMap returns the built-in British to American spelling map.
func DefaultSpellingMap() map[string]string {
	m, err := decodeSpelling(mustRead(defaultSpellingFile))
	if err != nil {
		panic(err)
	}
	return m
}

func mustRead(name string) []byte {
	raw, err := defaultFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return raw
}

// Load reads the category and exception trees from YAML files. An empty
// path selects the built-in tree for that half.
func Load(categoriesPath, exceptionsPath string) (Config, error) {
	def := Default()
	cfg := def
	if categoriesPath != "" {
		t, err := loadTree(categoriesPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Categories = t
	}
	if exceptionsPath != "" {
		t, err := loadTree(exceptionsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Exceptions = t
	}
	return cfg, nil
}

// LoadSpellingMap reads a flat YAML map of British to American spellings.
// A missing file yields the built-in map.
func LoadSpellingMap(path string) (map[string]string, error) {
	if path == "" {
		return DefaultSpellingMap(), nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSpellingMap(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexiconLoadFailed, "read spelling map").WithDetail("path=" + path)
	}
	m, err := decodeSpelling(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexiconLoadFailed, "decode spelling map").WithDetail("path=" + path)
	}
	return m, nil
}

func loadTree(path string) (Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexiconLoadFailed, "read lexicon file").WithDetail("path=" + path)
	}
	t, err := decodeTree(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexiconLoadFailed, "decode lexicon file").WithDetail("path=" + path)
	}
	return t, nil
}

func decodeTree(raw []byte) (Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	if t == nil {
		t = Tree{}
	}
	return t, nil
}

func decodeSpelling(raw []byte) (map[string]string, error) {
	var m map[string]string
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//Personal.AI order the ending
