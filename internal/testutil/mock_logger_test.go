package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
)

func TestRecordingLogger(t *testing.T) {
	l := NewRecordingLogger()
	child := l.With(logging.String("preset", "p@1"))

	l.Info("start")
	child.Warn("lexicon incomplete", logging.Int("phrases", 0))

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.True(t, l.HasMessage("warn", "lexicon incomplete"))
	assert.False(t, l.HasMessage("error", "lexicon incomplete"))

	v, ok := entries[1].Field("preset")
	assert.True(t, ok)
	assert.Equal(t, "p@1", v)
	_, ok = entries[0].Field("preset")
	assert.False(t, ok)
}

//Personal.AI order the ending
