package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/clockwise-hr/attendance-backend-go/internal/service/attendance"
)

type AttendanceHandler interface {
	Process(w http.ResponseWriter, r *http.Request)
	Daily(w http.ResponseWriter, r *http.Request)
	DailyReport(w http.ResponseWriter, r *http.Request)
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService *attendance.Service
}

func NewAttendanceHandler(attendanceService *attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Process implements AttendanceHandler. It triggers daily processing for
// one calendar day; per-employee failures come back itemized in the batch
// summary, not as an error status.
func (h *attendanceHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	var req record.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ProcessDailyAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily attendance processed", result)
}

// Daily implements AttendanceHandler.
func (h *attendanceHandlerImpl) Daily(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.GetDailyRecords(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// DailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.attendanceService.GetDailyReport(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rows)
}

// MonthlyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "Query parameter 'year' must be a number", nil)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, "Query parameter 'month' must be 1-12", nil)
		return
	}

	rows, err := h.attendanceService.GetMonthlyReport(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rows)
}

// Finalize implements AttendanceHandler.
func (h *attendanceHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var req record.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	locked, err := h.attendanceService.FinalizeDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance day finalized", map[string]int64{
		"locked_records": locked,
	})
}
