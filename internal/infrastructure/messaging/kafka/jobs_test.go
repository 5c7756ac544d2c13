package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TextCoder/pkg/types/coding"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

func TestJobBus_PublishJobAndDecode(t *testing.T) {
	pub := &mockPublisher{}
	bus := NewJobBus(pub, DefaultTopicNames(), "apiserver")

	job := coding.Job{JobID: "job-1", Preset: "demo@1.0.0", Rows: []coding.InRow{{Row: 0, Text: "I saw God"}}}
	require.NoError(t, bus.PublishJob(context.Background(), job))

	out := pub.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicCodingRequests, out[0].Topic)
	assert.Equal(t, "job-1", string(out[0].Key))

	got, err := DecodeJob(&common.Message{Value: out[0].Value})
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestJobBus_PublishJob_RequiresID(t *testing.T) {
	bus := NewJobBus(&mockPublisher{}, DefaultTopicNames(), "apiserver")
	assert.Error(t, bus.PublishJob(context.Background(), coding.Job{}))
}

func TestJobBus_PublishResult(t *testing.T) {
	pub := &mockPublisher{}
	bus := NewJobBus(pub, DefaultTopicNames(), "worker")

	res := coding.JobResult{JobID: "job-2", Error: "Unknown preset x@1"}
	require.NoError(t, bus.PublishResult(context.Background(), res))

	out := pub.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicCodingResults, out[0].Topic)

	got, err := DecodeJobResult(&common.Message{Value: out[0].Value})
	require.NoError(t, err)
	assert.Equal(t, res, got)

	_, err = DecodeJob(&common.Message{Value: out[0].Value})
	assert.Error(t, err)
}

//Personal.AI order the ending
