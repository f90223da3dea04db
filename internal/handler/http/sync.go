package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/validator"
	"github.com/clockwise-hr/attendance-backend-go/internal/service/ingest"
)

type SyncHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
}

type syncRunRequest struct {
	// From is optional RFC3339; when absent the configured lookback window
	// is used.
	From string `json:"from,omitempty"`
}

type syncHandlerImpl struct {
	ingestService *ingest.Service
	lookback      time.Duration
}

func NewSyncHandler(ingestService *ingest.Service, lookback time.Duration) SyncHandler {
	return &syncHandlerImpl{
		ingestService: ingestService,
		lookback:      lookback,
	}
}

// Run implements SyncHandler. It performs an on-demand punch sync outside
// the periodic cadence.
func (h *syncHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req syncRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	to := time.Now().UTC()
	from := to.Add(-h.lookback)
	if req.From != "" {
		parsed, ok := validator.IsValidDateTime(req.From)
		if !ok {
			response.ValidationError(w, map[string]string{
				"from": "from must be an RFC3339 timestamp",
			})
			return
		}
		from = parsed.UTC()
	}

	result, err := h.ingestService.Sync(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch sync completed", result)
}
