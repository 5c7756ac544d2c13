package kafka

import (
	"context"

	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

// MessagePublisher is satisfied by Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// JobBus publishes coding jobs and results as envelopes keyed by job id.
type JobBus struct {
	pub    MessagePublisher
	topics Topics
	source string
}

// NewJobBus returns a JobBus publishing through pub. source names the
// publishing service in every envelope.
func NewJobBus(pub MessagePublisher, topics Topics, source string) *JobBus {
	return &JobBus{pub: pub, topics: topics, source: source}
}

// Topics returns the topics the bus publishes to.
func (b *JobBus) Topics() Topics { return b.topics }

// PublishJob enqueues job on the requests topic.
func (b *JobBus) PublishJob(ctx context.Context, job coding.Job) error {
	if job.JobID == "" {
		return errors.New(errors.ErrCodeValidation, "job id required")
	}
	return b.publish(ctx, b.topics.Requests, EventCodingJob, job.JobID, job)
}

// PublishResult publishes res on the results topic.
func (b *JobBus) PublishResult(ctx context.Context, res coding.JobResult) error {
	return b.publish(ctx, b.topics.Results, EventCodingResult, res.JobID, res)
}

func (b *JobBus) publish(ctx context.Context, topic, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, b.source, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic, key)
	if err != nil {
		return err
	}
	return b.pub.Publish(ctx, msg)
}

// DecodeJob extracts the coding job carried by msg.
func DecodeJob(msg *common.Message) (coding.Job, error) {
	var job coding.Job
	env, err := EnvelopeFromMessage(msg)
	if err != nil {
		return job, err
	}
	if env.EventType != EventCodingJob {
		return job, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	if err := env.DecodePayload(&job); err != nil {
		return job, err
	}
	if job.JobID == "" {
		return job, errors.New(errors.ErrCodeValidation, "job id required")
	}
	return job, nil
}

// DecodeJobResult extracts the job result carried by msg.
func DecodeJobResult(msg *common.Message) (coding.JobResult, error) {
	var res coding.JobResult
	env, err := EnvelopeFromMessage(msg)
	if err != nil {
		return res, err
	}
	if env.EventType != EventCodingResult {
		return res, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	err = env.DecodePayload(&res)
	return res, err
}

//Personal.AI order the ending
