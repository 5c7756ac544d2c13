package run

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/TextCoder/pkg/types/coding"
)

func TestNewCodingRun(t *testing.T) {
	id := "p-1"
	in := []coding.InRow{{Row: 4, NewID: &id, Text: "I saw a light"}, {Row: 9, Text: "nothing"}}
	out := []coding.CodedRow{
		{Row: 4, Coded: coding.Result{Visual: 1}},
		{Row: 9, Coded: coding.Result{Conf: 1}},
	}
	r := NewCodingRun(SourceAPI, "ndeq@1.0.0", "1.0.0", "0.3.0", "fp", in, out)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, 2, r.RowCount)
	assert.Equal(t, 0, r.Rows[0].Position)
	assert.Equal(t, 4, r.Rows[0].Row)
	assert.Equal(t, &id, r.Rows[0].NewID)
	assert.Equal(t, TextDigest("I saw a light"), r.Rows[0].TextSHA256)
	assert.Nil(t, r.Rows[1].NewID)
	assert.Equal(t, 1, r.Rows[0].Coded.Visual)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestTextDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", TextDigest(""))
}

//Personal.AI order the ending
