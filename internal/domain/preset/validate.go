package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/TextCoder/pkg/types/coding"
)

var (
	dottedKeyRe  = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)
	presetNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("dottedkey", func(fl validator.FieldLevel) bool {
		return dottedKeyRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("presetname", func(fl validator.FieldLevel) bool {
		// "@" separates name and version in registry keys.
		return presetNameRe.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a raw preset document. Unknown top-level fields, wrong
// shapes, malformed dotted keys and empty terms are rejected; the first
// problem is reported along with the JSON path that caused it.
func Validate(data []byte) coding.ValidationResult {
	p := &Preset{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return decodeFailure(err)
	}
	return ValidatePreset(p)
}

// ValidatePreset checks an already decoded preset.
func ValidatePreset(p *Preset) coding.ValidationResult {
	err := validate.Struct(p)
	if err == nil {
		return coding.ValidationResult{OK: true}
	}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) || len(verrs) == 0 {
		return coding.ValidationResult{OK: false, Error: err.Error()}
	}
	fe := verrs[0]
	path := namespacePath(fe.Namespace())
	return coding.ValidationResult{
		OK:    false,
		Error: fmt.Sprintf("%s failed on the %q rule", strings.Join(path, "."), fe.Tag()),
		Path:  path,
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func decodeFailure(err error) coding.ValidationResult {
	res := coding.ValidationResult{OK: false, Error: err.Error()}
	switch e := err.(type) {
	case *json.UnmarshalTypeError:
		if e.Field != "" {
			res.Path = strings.SplitN(e.Field, ".", 2)
		}
	default:
		const prefix = "json: unknown field "
		if msg := err.Error(); strings.HasPrefix(msg, prefix) {
			res.Path = []string{strings.Trim(strings.TrimPrefix(msg, prefix), `"`)}
		}
	}
	return res
}

// namespacePath turns a validator namespace such as
// "Preset.lexicons[valence.awe][0]" into ["lexicons", "valence.awe", "0"].
// The leading struct name is dropped.
func namespacePath(ns string) []string {
	var (
		out     []string
		cur     strings.Builder
		inBrack bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range ns {
		switch {
		case r == '[' && !inBrack:
			flush()
			inBrack = true
		case r == ']' && inBrack:
			out = append(out, cur.String())
			cur.Reset()
			inBrack = false
		case r == '.' && !inBrack:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if len(out) > 0 {
		out = out[1:]
	}
	return out
}

//Personal.AI order the ending
