package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/workload"
)

type workloadService interface {
	RecordHours(ctx context.Context, params application.RecordWorkloadParams) (persistence.WorkloadRecord, error)
	Aggregate(ctx context.Context, params application.AggregateWorkloadParams) (application.WorkloadReport, error)
}

type WorkloadHandler struct {
	service   workloadService
	responder responder
	logger    *slog.Logger
}

func NewWorkloadHandler(service workloadService, logger *slog.Logger) *WorkloadHandler {
	base := defaultLogger(logger)
	return &WorkloadHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *WorkloadHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WorkloadHandler", operation, attrs...)
}

func (h *WorkloadHandler) Record(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req workloadRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Record", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode workload record", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Record", "principal_id", principal.EmployeeID, "employee_id", input.EmployeeID)

	record, err := h.service.RecordHours(r.Context(), application.RecordWorkloadParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "workload recording failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("record_id", record.ID).InfoContext(r.Context(), "workload recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, workloadRecordResponse{Record: toWorkloadRecordDTO(record)})
}

func (h *WorkloadHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	query := r.URL.Query()
	employeeID := strings.TrimSpace(query.Get("employee_id"))
	if employeeID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	from, err := calendar.ParseDate(strings.TrimSpace(query.Get("from")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	to, err := calendar.ParseDate(strings.TrimSpace(query.Get("to")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	granularity := application.GranularityDaily
	if value := strings.TrimSpace(query.Get("granularity")); value != "" {
		granularity = application.Granularity(value)
	}

	logger := h.log(r.Context(), "Report", "principal_id", principal.EmployeeID, "employee_id", employeeID, "granularity", string(granularity))

	report, err := h.service.Aggregate(r.Context(), application.AggregateWorkloadParams{
		Principal:   principal,
		EmployeeID:  employeeID,
		From:        from,
		To:          to,
		Granularity: granularity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "workload aggregation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "workload report built")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWorkloadReportDTO(report))
}

type workloadRecordRequest struct {
	EmployeeID   string           `json:"employee_id"`
	Date         string           `json:"date"`
	WeekNumber   int              `json:"week_number"`
	PlannedHours decimal.Decimal  `json:"planned_hours"`
	ActualHours  *decimal.Decimal `json:"actual_hours"`
}

func (r workloadRecordRequest) toInput() (application.WorkloadRecordInput, error) {
	date, err := calendar.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return application.WorkloadRecordInput{}, errInvalidDate
	}

	return application.WorkloadRecordInput{
		EmployeeID:   strings.TrimSpace(r.EmployeeID),
		Date:         date,
		WeekNumber:   r.WeekNumber,
		PlannedHours: r.PlannedHours,
		ActualHours:  r.ActualHours,
	}, nil
}

type workloadRecordResponse struct {
	Record workloadRecordDTO `json:"record"`
}

type workloadRecordDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	WeekNumber   int     `json:"week_number"`
	PlannedHours string  `json:"planned_hours"`
	ActualHours  *string `json:"actual_hours,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toWorkloadRecordDTO(record persistence.WorkloadRecord) workloadRecordDTO {
	dto := workloadRecordDTO{
		ID:           record.ID,
		EmployeeID:   record.EmployeeID,
		Date:         record.Date.String(),
		WeekNumber:   record.WeekNumber,
		PlannedHours: record.PlannedHours.String(),
		CreatedAt:    record.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if record.ActualHours != nil {
		actual := record.ActualHours.String()
		dto.ActualHours = &actual
	}
	return dto
}

type workloadReportDTO struct {
	Daily    []dailySummaryDTO   `json:"daily,omitempty"`
	Weekly   []weeklySummaryDTO  `json:"weekly,omitempty"`
	Monthly  []monthlySummaryDTO `json:"monthly,omitempty"`
	Breaches breachesDTO         `json:"breaches"`
}

type dailySummaryDTO struct {
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	Planned     string  `json:"planned"`
	Actual      string  `json:"actual"`
	Utilization *string `json:"utilization,omitempty"`
	Efficiency  string  `json:"efficiency"`
}

type weeklySummaryDTO struct {
	EmployeeID  string  `json:"employee_id"`
	ISOYear     int     `json:"iso_year"`
	ISOWeek     int     `json:"iso_week"`
	Days        int     `json:"days"`
	Planned     string  `json:"planned"`
	Actual      string  `json:"actual"`
	Utilization *string `json:"utilization,omitempty"`
	Efficiency  string  `json:"efficiency"`
}

type monthlySummaryDTO struct {
	EmployeeID  string  `json:"employee_id"`
	Month       string  `json:"month"`
	Days        int     `json:"days"`
	Planned     string  `json:"planned"`
	Actual      string  `json:"actual"`
	Utilization *string `json:"utilization,omitempty"`
	Efficiency  string  `json:"efficiency"`
}

type breachesDTO struct {
	Overloaded    []breachDTO `json:"overloaded,omitempty"`
	Underutilized []breachDTO `json:"underutilized,omitempty"`
}

type breachDTO struct {
	EmployeeID  string `json:"employee_id"`
	ISOYear     int    `json:"iso_year"`
	ISOWeek     int    `json:"iso_week"`
	Utilization string `json:"utilization"`
}

func toWorkloadReportDTO(report application.WorkloadReport) workloadReportDTO {
	dto := workloadReportDTO{
		Breaches: breachesDTO{
			Overloaded:    toBreachDTOs(report.Breaches.Overloaded),
			Underutilized: toBreachDTOs(report.Breaches.Underutilized),
		},
	}
	for _, summary := range report.Daily {
		dto.Daily = append(dto.Daily, dailySummaryDTO{
			EmployeeID:  summary.EmployeeID,
			Date:        summary.Date.String(),
			Planned:     summary.Planned.String(),
			Actual:      summary.Actual.String(),
			Utilization: decimalPtrString(summary.Utilization),
			Efficiency:  summary.Efficiency.String(),
		})
	}
	for _, summary := range report.Weekly {
		dto.Weekly = append(dto.Weekly, weeklySummaryDTO{
			EmployeeID:  summary.EmployeeID,
			ISOYear:     summary.ISOYear,
			ISOWeek:     summary.ISOWeek,
			Days:        summary.Days,
			Planned:     summary.Planned.String(),
			Actual:      summary.Actual.String(),
			Utilization: decimalPtrString(summary.Utilization),
			Efficiency:  summary.Efficiency.String(),
		})
	}
	for _, summary := range report.Monthly {
		dto.Monthly = append(dto.Monthly, monthlySummaryDTO{
			EmployeeID:  summary.EmployeeID,
			Month:       fmt.Sprintf("%04d-%02d", summary.Year, int(summary.Month)),
			Days:        summary.Days,
			Planned:     summary.Planned.String(),
			Actual:      summary.Actual.String(),
			Utilization: decimalPtrString(summary.Utilization),
			Efficiency:  summary.Efficiency.String(),
		})
	}
	return dto
}

func toBreachDTOs(breaches []workload.Breach) []breachDTO {
	if len(breaches) == 0 {
		return nil
	}
	out := make([]breachDTO, 0, len(breaches))
	for _, breach := range breaches {
		out = append(out, breachDTO{
			EmployeeID:  breach.EmployeeID,
			ISOYear:     breach.ISOYear,
			ISOWeek:     breach.ISOWeek,
			Utilization: breach.Utilization.String(),
		})
	}
	return out
}

func decimalPtrString(value *decimal.Decimal) *string {
	if value == nil {
		return nil
	}
	s := value.String()
	return &s
}
