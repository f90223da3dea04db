package http

import (
	"net/http"

	"github.com/clockwise-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/cron"
)

type JobsHandler interface {
	Stats(w http.ResponseWriter, r *http.Request)
}

type jobsHandlerImpl struct {
	scheduler *cron.Scheduler
}

func NewJobsHandler(scheduler *cron.Scheduler) JobsHandler {
	return &jobsHandlerImpl{scheduler: scheduler}
}

// Stats implements JobsHandler. It exposes per-job run, failure and
// skipped-tick counters.
func (h *jobsHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.scheduler.Stats())
}
