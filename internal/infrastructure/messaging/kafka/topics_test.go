package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

type mockKafkaConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions map[string][]kafka.Partition
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	var out []kafka.Partition
	for _, t := range topics {
		out = append(out, m.partitions[t]...)
	}
	return out, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func TestEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventCodingJob, "apiserver", map[string]string{"job_id": "j1"})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicCodingRequests, "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", string(msg.Key))
	assert.Equal(t, EventCodingJob, msg.Headers["event_type"])
	assert.Equal(t, "apiserver", msg.Headers["source_service"])

	back, err := EnvelopeFromMessage(&common.Message{Value: msg.Value})
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, back.DecodePayload(&payload))
	assert.Equal(t, "j1", payload["job_id"])
}

func TestEnvelopeFromMessage_Invalid(t *testing.T) {
	_, err := EnvelopeFromMessage(&common.Message{})
	assert.Error(t, err)
	_, err = EnvelopeFromMessage(&common.Message{Value: []byte("{nope")})
	assert.Error(t, err)

	env := &Envelope{}
	assert.Error(t, env.DecodePayload(&struct{}{}))
}

func TestTopicManager_CreateTopic(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)

	err := m.CreateTopic(context.Background(), common.TopicConfig{
		Name: TopicCodingResults, NumPartitions: 3, ReplicationFactor: 1,
		RetentionMs: 1000, CleanupPolicy: "compact",
	})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, TopicCodingResults, conn.created[0].Topic)
	assert.ElementsMatch(t, []kafka.ConfigEntry{
		{ConfigName: "retention.ms", ConfigValue: "1000"},
		{ConfigName: "cleanup.policy", ConfigValue: "compact"},
	}, conn.created[0].ConfigEntries)
}

func TestTopicManager_CreateTopic_Validation(t *testing.T) {
	m := NewTopicManagerWithConn(&mockKafkaConn{}, nil)
	ctx := context.Background()
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{NumPartitions: 1, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestTopicManager_CreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{
		createErr:  errors.New("unrelated broker error"),
		partitions: map[string][]kafka.Partition{"t": {{Topic: "t"}}},
	}
	m := NewTopicManagerWithConn(conn, nil)
	assert.NoError(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))

	conn.createErr = errors.New("Topic with this name already exists")
	assert.NoError(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "u", NumPartitions: 1, ReplicationFactor: 1}))

	conn.createErr = errors.New("boom")
	assert.Error(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "v", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)

	require.NoError(t, m.EnsureTopics(context.Background(), TopicConfigs(DefaultTopicNames(), 0)))
	require.Len(t, conn.created, 3)
	assert.Equal(t, TopicCodingRequests, conn.created[0].Topic)
	assert.Equal(t, TopicCodingResults, conn.created[1].Topic)
	assert.Equal(t, TopicCodingDLQ, conn.created[2].Topic)
	for _, c := range conn.created {
		assert.Equal(t, 1, c.ReplicationFactor)
	}
}

//Personal.AI order the ending
