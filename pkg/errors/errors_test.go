// Package errors_test covers the AppError type, factory functions and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"preset not found", errors.ErrCodePresetNotFound, "preset ritual@1.0.0 not found"},
		{"lexicon incomplete", errors.ErrCodeLexiconIncomplete, "no patterns registered"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.Stack, "errors_test.go")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeUnknownTextColumn, "column %q not in %v", "story", []string{"text"})
	assert.Equal(t, `column "story" not in [text]`, ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodePresetInvalid, "bad meta")
	outer := errors.Wrap(inner, errors.CodeUnknown, "while loading")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodePresetInvalid, outer.Code)
	assert.Same(t, inner, outer.Unwrap())
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	inner := errors.New(errors.ErrCodePresetInvalid, "bad meta")
	outer := errors.Wrap(inner, errors.ErrCodePresetLoadFailed, "load presets")
	assert.Equal(t, errors.ErrCodePresetLoadFailed, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting and fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodeLexiconMalformed, "section is not a list")
	assert.Equal(t, "[LEX_002] section is not a list", ae.Error())

	withDetail := ae.WithDetail("path=valence.awe")
	assert.Equal(t, "[LEX_002] section is not a list: path=valence.awe", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	ae := errors.New(errors.ErrCodeExportFailed, "upload").WithCause(cause)
	assert.True(t, stderrors.Is(ae, cause))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_NestedChain(t *testing.T) {
	base := errors.New(errors.ErrCodePresetNotFound, "missing")
	wrapped := fmt.Errorf("handler: %w", errors.Wrap(base, errors.ErrCodeCodingFailed, "code rows"))

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeCodingFailed))
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodePresetNotFound))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodePresetNotFound, "x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeRunNotFound, "x"))))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(errors.InvalidParam("x")))
	assert.Equal(t, errors.ErrCodeUnauthorized,
		errors.GetCode(fmt.Errorf("outer: %w", errors.Unauthorized("sig"))))
}

func TestStdlib_ErrorsAs_ExtractsAppError(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New(errors.ErrCodeCacheError, "redis down"))

	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.ErrCodeCacheError, ae.Code)
	assert.True(t, errors.Is(err, ae))
}

//Personal.AI order the ending
