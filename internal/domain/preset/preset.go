// Package preset models versioned lexicon overlays ("presets") that tailor
// the base lexicon for a study without touching the engine.
package preset

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// DefaultVersion is used when a preset carries no meta.version.
const DefaultVersion = "0.0.0"

// Meta identifies a preset.
type Meta struct {
	Name        string `json:"name" validate:"required,max=128,presetname"`
	Version     string `json:"version" validate:"omitempty,max=64"`
	Description string `json:"description,omitempty" validate:"max=1024"`
}

// Preset is a named overlay of dotted lexicon keys onto the base
// categories and exceptions trees.
type Preset struct {
	Meta       Meta                `json:"meta"`
	Lexicons   map[string][]string `json:"lexicons,omitempty" validate:"omitempty,dive,keys,dottedkey,endkeys,dive,required"`
	Exceptions map[string][]string `json:"exceptions,omitempty" validate:"omitempty,dive,keys,dottedkey,endkeys,dive,required"`
	Policy     map[string]any      `json:"policy,omitempty"`
}

// Key returns the registry key "name@version".
func (p *Preset) Key() string {
	return KeyFor(p.Meta.Name, p.Meta.Version)
}

// KeyFor joins a name and version into a registry key.
func KeyFor(name, version string) string {
	return name + "@" + version
}

// VersionOf returns the part of a registry key after the last "@", or the
// whole key when it has none.
func VersionOf(key string) string {
	if i := strings.LastIndex(key, "@"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Apply overlays the preset onto base and returns the resulting lexicon.
// base is not modified.
func (p *Preset) Apply(base lexicon.Config) lexicon.Config {
	return lexicon.Config{
		Categories: lexicon.Overlay(base.Categories, p.Lexicons),
		Exceptions: lexicon.Overlay(base.Exceptions, p.Exceptions),
	}
}

// Parse decodes a preset document. stem names the source file and becomes
// the name when meta.name is absent; a missing version becomes
// DefaultVersion.
func Parse(data []byte, stem string) (*Preset, error) {
	p := &Preset{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePresetInvalid, "decode preset").
			WithDetail("source=" + stem)
	}
	if p.Meta.Name == "" {
		p.Meta.Name = stem
	}
	if p.Meta.Version == "" {
		p.Meta.Version = DefaultVersion
	}
	return p, nil
}

// StemOf returns the file name of path without directory and extension.
func StemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

//Personal.AI order the ending
