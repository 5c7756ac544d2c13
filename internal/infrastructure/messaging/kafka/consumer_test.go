package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TextCoder/internal/testutil"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

// mockKafkaReader serves queued messages, then blocks until ctx ends.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.committed = append(m.committed, msg.Offset)
	}
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *mockKafkaReader) commits() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.committed...)
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []*common.ProducerMessage
	err  error
}

func (p *mockPublisher) Publish(_ context.Context, msg *common.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) published() []*common.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*common.ProducerMessage(nil), p.msgs...)
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "textcoder-worker",
		Topics:  []string{TopicCodingRequests},
		Retry: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: TopicCodingDLQ,
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(testConsumerConfig()))

	cfg := testConsumerConfig()
	cfg.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = testConsumerConfig()
	cfg.Topics = nil
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = testConsumerConfig()
	cfg.AutoOffsetReset = "middle"
	assert.Error(t, ValidateConsumerConfig(cfg))
}

func TestConsumer_DispatchAndCommit(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicCodingRequests, Offset: 4, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventCodingJob)}}},
		{Topic: TopicCodingRequests, Offset: 5, Value: []byte("b")},
	}}
	c := NewConsumerWithReader(reader, testConsumerConfig(), nil, nil)

	var (
		mu   sync.Mutex
		seen []string
	)
	c.Subscribe(TopicCodingRequests, func(_ context.Context, msg *common.Message) error {
		mu.Lock()
		seen = append(seen, string(msg.Value))
		mu.Unlock()
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return len(reader.commits()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{4, 5}, reader.commits())
	assert.True(t, reader.closed)

	m := c.Metrics()
	assert.Equal(t, int64(2), m.Consumed)
	assert.Equal(t, int64(2), m.Processed)
}

func TestConsumer_RetryThenSucceed(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: TopicCodingRequests, Offset: 1, Value: []byte("x")}}}
	c := NewConsumerWithReader(reader, testConsumerConfig(), &mockPublisher{}, nil)

	var calls atomic.Int32
	c.Subscribe(TopicCodingRequests, func(context.Context, *common.Message) error {
		if calls.Add(1) < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(2), calls.Load())
	m := c.Metrics()
	assert.Equal(t, int64(1), m.Processed)
	assert.Equal(t, int64(1), m.Retried)
	assert.Zero(t, m.DeadLettered)
}

func TestConsumer_DeadLetter(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{
		Topic:   TopicCodingRequests,
		Offset:  9,
		Key:     []byte("job-9"),
		Value:   []byte("poison"),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventCodingJob)}},
	}}}
	dlq := &mockPublisher{}
	logger := testutil.NewRecordingLogger()
	c := NewConsumerWithReader(reader, testConsumerConfig(), dlq, logger)

	var calls atomic.Int32
	c.Subscribe(TopicCodingRequests, func(context.Context, *common.Message) error {
		calls.Add(1)
		return errors.New("cannot decode")
	})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(3), calls.Load())
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicCodingDLQ, out[0].Topic)
	assert.Equal(t, "job-9", string(out[0].Key))
	assert.Equal(t, TopicCodingRequests, out[0].Headers[HeaderOriginalTopic])
	assert.Equal(t, "cannot decode", out[0].Headers[HeaderErrorMessage])
	assert.Equal(t, "3", out[0].Headers[HeaderAttempts])
	assert.Equal(t, EventCodingJob, out[0].Headers["event_type"])

	m := c.Metrics()
	assert.Equal(t, int64(1), m.Failed)
	assert.Equal(t, int64(1), m.DeadLettered)
	assert.True(t, logger.HasMessage("error", "message processing failed after retries"))
}

func TestConsumer_NoHandlerStillCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "other", Offset: 3, Value: []byte("x")}}}
	logger := testutil.NewRecordingLogger()
	c := NewConsumerWithReader(reader, testConsumerConfig(), nil, logger)

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, logger.HasMessage("warn", "no handler for topic"))
}

func TestConsumer_CloseBeforeStart(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, testConsumerConfig(), nil, nil)
	assert.NoError(t, c.Close())
}

//Personal.AI order the ending
