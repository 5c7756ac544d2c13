// Package worker handles coding jobs delivered over the message bus.
package worker

import (
	"context"
	"time"

	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

// Job outcomes reported to Metrics.
const (
	StatusOK        = "ok"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
	StatusDuplicate = "duplicate"
	StatusMalformed = "malformed"
)

// RowCoder codes the rows of a job.
type RowCoder interface {
	CodeRows(ctx context.Context, src run.Source, presetKey string, rows []coding.InRow) (*coding.CodeResponse, error)
}

// ResultPublisher sends job outcomes back to the bus.
type ResultPublisher interface {
	PublishResult(ctx context.Context, res coding.JobResult) error
}

// Locker claims a job id so redeliveries are coded once. release gives the
// claim back; it is called when coding fails so a retry can claim again.
type Locker interface {
	Claim(ctx context.Context, jobID string) (release func(), ok bool, err error)
}

// Metrics counts handled jobs.
type Metrics interface {
	JobHandled(status string)
}

// Handler turns job messages into published results.
type Handler struct {
	coder     RowCoder
	publisher ResultPublisher
	locker    Locker
	metrics   Metrics
	logger    logging.Logger
	timeout   time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithLocker enables job de-duplication.
func WithLocker(l Locker) Option {
	return func(h *Handler) { h.locker = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds the time spent coding one job.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler returns a Handler.
func NewHandler(coder RowCoder, publisher ResultPublisher, opts ...Option) *Handler {
	h := &Handler{
		coder:     coder,
		publisher: publisher,
		logger:    logging.NewNopLogger(),
		timeout:   5 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one message. A returned error asks the consumer to retry
// and eventually dead-letter the message.
func (h *Handler) Handle(ctx context.Context, msg *common.Message) error {
	job, err := kafka.DecodeJob(msg)
	if err != nil {
		h.done(StatusMalformed)
		h.logger.Warn("malformed coding job",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return err
	}
	log := h.logger.With(logging.String("job_id", job.JobID))

	release := func() {}
	if h.locker != nil {
		rel, ok, err := h.locker.Claim(ctx, job.JobID)
		if err != nil {
			log.Warn("job claim failed, coding anyway", logging.Err(err))
		} else if !ok {
			h.done(StatusDuplicate)
			log.Info("job already claimed")
			return nil
		} else {
			release = rel
		}
	}

	jctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := h.coder.CodeRows(jctx, run.SourceWorker, job.Preset, job.Rows)
	if err != nil {
		if errors.IsClientError(errors.GetCode(err)) {
			h.done(StatusRejected)
			log.Warn("coding job rejected", logging.Err(err))
			return h.publish(ctx, coding.JobResult{JobID: job.JobID, Error: err.Error()}, release)
		}
		release()
		h.done(StatusFailed)
		return err
	}

	res := coding.JobResult{JobID: job.JobID, RunID: resp.RunID, Results: resp.Results}
	if err := h.publish(ctx, res, release); err != nil {
		return err
	}
	h.done(StatusOK)
	log.Info("coding job done", logging.Int("rows", len(resp.Results)))
	return nil
}

func (h *Handler) publish(ctx context.Context, res coding.JobResult, release func()) error {
	if err := h.publisher.PublishResult(ctx, res); err != nil {
		release()
		h.done(StatusFailed)
		return err
	}
	return nil
}

func (h *Handler) done(status string) {
	if h.metrics != nil {
		h.metrics.JobHandled(status)
	}
}

//Personal.AI order the ending
