package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// JobPublisher enqueues coding jobs.
type JobPublisher interface {
	PublishJob(ctx context.Context, job coding.Job) error
}

// JobHandler accepts asynchronous coding jobs.
type JobHandler struct {
	pub    JobPublisher
	logger logging.Logger
}

// NewJobHandler returns a JobHandler.
func NewJobHandler(pub JobPublisher, logger logging.Logger) *JobHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &JobHandler{pub: pub, logger: logger}
}

// Submit handles POST /jobs. A missing job_id is generated.
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var job coding.Job
	if err := decodeJSON(r, &job); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if len(job.Rows) == 0 {
		writeAppError(w, h.logger, errors.New(errors.ErrCodeValidation, "job has no rows"))
		return
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if err := h.pub.PublishJob(r.Context(), job); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.logger.Info("coding job queued", logging.String("job_id", job.JobID), logging.Int("rows", len(job.Rows)))
	writeJSON(w, http.StatusAccepted, coding.JobAccepted{JobID: job.JobID})
}

//Personal.AI order the ending
