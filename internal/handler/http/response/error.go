package response

import (
	"errors"
	"net/http"

	"github.com/clockwise-hr/attendance-backend-go/internal/connector"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/cron"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Record domain errors
	case errors.Is(err, record.ErrRecordLocked):
		Conflict(w, "Attendance record is finalized and locked")
	case errors.Is(err, record.ErrProcessingInProgress):
		Conflict(w, "Daily attendance processing is already running")
	case errors.Is(err, record.ErrConflict):
		Conflict(w, "Concurrent update on attendance record")
	case errors.Is(err, record.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Connector errors
	case errors.Is(err, connector.ErrConnectionFailed):
		ServiceUnavailable(w, "Punch device source is unreachable")
	case errors.Is(err, connector.ErrNotConnected):
		ServiceUnavailable(w, "Punch device source is not connected")

	// Scheduler errors
	case errors.Is(err, cron.ErrJobRunning):
		Conflict(w, "Job is already running")
	case errors.Is(err, cron.ErrJobNotFound):
		NotFound(w, "Job not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
