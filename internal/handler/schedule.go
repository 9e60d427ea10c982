package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
	"github.com/sanjshine99/carepath/internal/repository"
	"github.com/sanjshine99/carepath/internal/service"
)

// scheduleCareReceiverRepository is the read surface ScheduleHandler needs
// from CareReceiverRepository, narrowed so the handler is testable against a
// fake without a live database (mirrors the service package's
// interface-per-collaborator pattern).
type scheduleCareReceiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareReceiver, error)
}

// scheduleCareGiverRepository is the read surface ScheduleHandler needs from
// CareGiverRepository.
type scheduleCareGiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareGiver, error)
	ListActive(ctx context.Context) ([]model.CareGiver, error)
}

// scheduleAppointmentRepository is the surface ScheduleHandler needs from
// AppointmentRepository.
type scheduleAppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.AppointmentFilter) ([]model.Appointment, int64, error)
	ExistsForVisit(ctx context.Context, receiverID uuid.UUID, day model.TimeOnlyDate, visitNumber int) (bool, error)
	Create(ctx context.Context, apt *model.Appointment) error
	Stats(ctx context.Context, start, end model.TimeOnlyDate) (*repository.AppointmentStats, error)
}

// ScheduleHandler serves the scheduling driving HTTP surface, wrapping the
// Orchestrator, Validator, and Analyzer plus the direct appointment/care-
// giver reads the surface needs for listing, manual overrides, and
// find-available.
type ScheduleHandler struct {
	orchestrator *service.Orchestrator
	validator    *service.Validator
	analyzer     *service.Analyzer
	feasibility  *service.FeasibilityOracle
	availability *service.AvailabilityStore
	settings     *service.SettingsService
	notifier     service.Notifier
	estimator    *geo.Estimator

	careReceivers scheduleCareReceiverRepository
	careGivers    scheduleCareGiverRepository
	appointments  scheduleAppointmentRepository

	validate *validator.Validate
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(
	orchestrator *service.Orchestrator,
	validatorSvc *service.Validator,
	analyzer *service.Analyzer,
	feasibility *service.FeasibilityOracle,
	availability *service.AvailabilityStore,
	settings *service.SettingsService,
	notifier service.Notifier,
	estimator *geo.Estimator,
	careReceivers scheduleCareReceiverRepository,
	careGivers scheduleCareGiverRepository,
	appointments scheduleAppointmentRepository,
) *ScheduleHandler {
	if notifier == nil {
		notifier = service.NewLoggingNotifier()
	}
	return &ScheduleHandler{
		orchestrator:  orchestrator,
		validator:     validatorSvc,
		analyzer:      analyzer,
		feasibility:   feasibility,
		availability:  availability,
		settings:      settings,
		notifier:      notifier,
		estimator:     estimator,
		careReceivers: careReceivers,
		careGivers:    careGivers,
		appointments:  appointments,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Generate handles POST /schedule/generate.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.EndDate.Before(req.StartDate) {
		respondError(w, http.StatusBadRequest, CodeInvalidDateRange, "end_date must not be before start_date")
		return
	}

	run, err := h.orchestrator.Generate(r.Context(), req.receiverIDs(), req.StartDate, req.EndDate)
	if err != nil {
		respondInternal(w, "schedule generate", err)
		return
	}

	respondData(w, http.StatusOK, run)
}

// ListAppointments handles GET /schedule/appointments.
func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AppointmentFilter{Page: 1, Limit: 20}

	if s := q.Get("start_date"); s != "" {
		d, err := parseQueryDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidationError, "invalid start_date")
			return
		}
		filter.StartDate = &d
	}
	if s := q.Get("end_date"); s != "" {
		d, err := parseQueryDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidationError, "invalid end_date")
			return
		}
		filter.EndDate = &d
	}
	if s := q.Get("care_giver_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidationError, "invalid care_giver_id")
			return
		}
		filter.CareGiverID = &id
	}
	if s := q.Get("care_receiver_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidationError, "invalid care_receiver_id")
			return
		}
		filter.CareReceiverID = &id
	}
	if s := q.Get("status"); s != "" {
		status := model.AppointmentStatus(s)
		if !status.IsValid() {
			respondError(w, http.StatusBadRequest, CodeValidationError, "invalid status")
			return
		}
		filter.Status = &status
	}
	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Page = n
		}
	}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	appointments, total, err := h.appointments.List(r.Context(), filter)
	if err != nil {
		respondInternal(w, "list appointments", err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"appointments": appointments,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// Unscheduled handles GET /schedule/unscheduled.
func (h *ScheduleHandler) Unscheduled(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, ok := h.parseWindow(w, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return
	}

	results, err := h.orchestrator.Unscheduled(r.Context(), nil, start, end)
	if err != nil {
		respondInternal(w, "list unscheduled visits", err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{"results": results})
}

// AnalyzeUnscheduled handles POST /schedule/analyze-unscheduled.
func (h *ScheduleHandler) AnalyzeUnscheduled(w http.ResponseWriter, r *http.Request) {
	var req analyzeUnscheduledRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	receiver, err := h.careReceivers.GetByID(r.Context(), req.CareReceiverID)
	if errors.Is(err, repository.ErrCareReceiverNotFound) {
		respondError(w, http.StatusNotFound, CodeCareReceiverNotFound, "care receiver not found")
		return
	}
	if err != nil {
		respondInternal(w, "load care receiver", err)
		return
	}

	var template *model.VisitTemplate
	for i := range receiver.VisitTemplates {
		if receiver.VisitTemplates[i].VisitNumber == req.VisitNumber {
			template = &receiver.VisitTemplates[i]
			break
		}
	}
	if template == nil {
		respondError(w, http.StatusNotFound, CodeValidationError, "visit template not found on care receiver")
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), receiver, template, req.Date, geo.NewTravelCache())
	if err != nil {
		respondInternal(w, "analyze unscheduled visit", err)
		return
	}

	respondData(w, http.StatusOK, report)
}

// Validate handles POST /schedule/validate.
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateWindowRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.EndDate.Before(req.StartDate) {
		respondError(w, http.StatusBadRequest, CodeInvalidDateRange, "end_date must not be before start_date")
		return
	}

	report, err := h.validator.Run(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		respondInternal(w, "validate appointments", err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"summary": map[string]any{
			"invalidated": len(report.Invalidated),
			"restored":    len(report.Restored),
			"unchanged":   report.Unchanged,
		},
		"invalid": report.Invalidated,
		"valid":   report.Restored,
	})
}

// availableCareGiver is one entry in the find-available ranked list.
type availableCareGiver struct {
	CareGiverID       uuid.UUID `json:"care_giver_id"`
	Name              string    `json:"name"`
	DistanceKm        float64   `json:"distance_km"`
	TravelTimeMinutes int       `json:"travel_time_minutes"`
}

// FindAvailable handles POST /schedule/find-available.
func (h *ScheduleHandler) FindAvailable(w http.ResponseWriter, r *http.Request) {
	var req findAvailableRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	receiver, err := h.careReceivers.GetByID(r.Context(), req.CareReceiverID)
	if errors.Is(err, repository.ErrCareReceiverNotFound) {
		respondError(w, http.StatusNotFound, CodeCareReceiverNotFound, "care receiver not found")
		return
	}
	if err != nil {
		respondInternal(w, "load care receiver", err)
		return
	}

	startMinutes, err := geo.ParseHHMM(req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid start_time")
		return
	}
	endMinutes, err := geo.ParseHHMM(req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid end_time")
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondInternal(w, "load settings", err)
		return
	}
	maxDistance, _ := settings.MaxDistanceKm.Float64()

	all, err := h.careGivers.ListActive(r.Context())
	if err != nil {
		respondInternal(w, "list care givers", err)
		return
	}

	candidates := service.FilterCandidates(all, receiver, req.Requirements, req.DoubleHanded, maxDistance)
	cache := geo.NewTravelCache()
	receiverHome := receiver.Home()

	results := make([]availableCareGiver, 0, len(candidates))
	for i := range candidates {
		cg := &candidates[i]
		outcome, err := h.feasibility.IsAvailable(r.Context(), cg.ID, req.Date, startMinutes, endMinutes, receiverHome, nil, cache)
		if err != nil {
			respondInternal(w, "check feasibility", err)
			return
		}
		if !outcome.Available {
			continue
		}
		results = append(results, availableCareGiver{
			CareGiverID:       cg.ID,
			Name:              cg.FullName(),
			DistanceKm:        geo.Haversine(cg.Home(), receiverHome),
			TravelTimeMinutes: h.estimator.TravelTimeMinutes(r.Context(), cg.Home(), receiverHome, cache),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })

	respondData(w, http.StatusOK, map[string]any{"care_givers": results})
}

// CreateManualAppointment handles POST /schedule/appointments/manual.
func (h *ScheduleHandler) CreateManualAppointment(w http.ResponseWriter, r *http.Request) {
	var req manualAppointmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	receiver, err := h.careReceivers.GetByID(r.Context(), req.CareReceiverID)
	if errors.Is(err, repository.ErrCareReceiverNotFound) {
		respondError(w, http.StatusNotFound, CodeCareReceiverNotFound, "care receiver not found")
		return
	}
	if err != nil {
		respondInternal(w, "load care receiver", err)
		return
	}

	cg, err := h.careGivers.GetByID(r.Context(), req.CareGiverID)
	if errors.Is(err, repository.ErrCareGiverNotFound) {
		respondError(w, http.StatusNotFound, CodeCareGiverNotFound, "care giver not found")
		return
	}
	if err != nil {
		respondInternal(w, "load care giver", err)
		return
	}

	if req.DoubleHanded && req.SecondaryCareGiverID == nil {
		respondError(w, http.StatusBadRequest, CodeMissingFields, "double-handed appointments require a secondary care giver")
		return
	}

	startMinutes, err := geo.ParseHHMM(req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid start_time")
		return
	}
	endMinutes, err := geo.ParseHHMM(req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid end_time")
		return
	}
	if endMinutes <= startMinutes {
		respondError(w, http.StatusBadRequest, CodeValidationError, "end_time must be after start_time")
		return
	}

	avail, err := h.availability.CurrentFor(r.Context(), cg, req.Date)
	if err != nil {
		respondInternal(w, "resolve availability", err)
		return
	}

	priority := req.Priority
	if priority == 0 {
		priority = 3
	}

	apt := &model.Appointment{
		CareReceiverID:       receiver.ID,
		CareGiverID:          cg.ID,
		SecondaryCareGiverID: req.SecondaryCareGiverID,
		Date:                 req.Date,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Duration:             endMinutes - startMinutes,
		VisitNumber:          req.VisitNumber,
		Requirements:         req.Requirements,
		DoubleHanded:         req.DoubleHanded,
		Priority:             priority,
		Status:               model.StatusScheduled,
		SnapshotVersionID:    avail.VersionID,
	}
	if err := apt.SetSnapshotSlots(avail.Schedule[req.Date.Weekday()]); err != nil {
		respondInternal(w, "snapshot availability", err)
		return
	}

	exists, err := h.appointments.ExistsForVisit(r.Context(), receiver.ID, req.Date, req.VisitNumber)
	if err != nil {
		respondInternal(w, "check existing appointment", err)
		return
	}
	if exists {
		respondError(w, http.StatusConflict, CodeDuplicateError, "an appointment already exists for this visit on this date")
		return
	}

	if err := h.appointments.Create(r.Context(), apt); err != nil {
		respondInternal(w, "create appointment", err)
		return
	}

	h.notifier.NotifyManualSchedule(r.Context(), service.ManualScheduleEvent{
		AppointmentID:  apt.ID.String(),
		CareGiverID:    cg.ID.String(),
		CareReceiverID: receiver.ID.String(),
	})

	respondData(w, http.StatusCreated, apt)
}

// UpdateAppointmentStatus handles PATCH /schedule/appointments/:id/status.
func (h *ScheduleHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid status")
		return
	}

	apt, err := h.appointments.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrAppointmentNotFound) {
		respondError(w, http.StatusNotFound, CodeValidationError, "appointment not found")
		return
	}
	if err != nil {
		respondInternal(w, "load appointment", err)
		return
	}

	apt.Status = req.Status
	if req.Status == model.StatusCancelled {
		apt.CancellationReason = req.CancellationReason
	}

	if err := h.appointments.Update(r.Context(), apt); err != nil {
		respondInternal(w, "update appointment status", err)
		return
	}

	respondData(w, http.StatusOK, apt)
}

// DeleteAppointment handles DELETE /schedule/appointments/:id.
func (h *ScheduleHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.appointments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			respondError(w, http.StatusNotFound, CodeValidationError, "appointment not found")
			return
		}
		respondInternal(w, "delete appointment", err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{"deleted": true})
}

// Stats handles GET /schedule/stats.
func (h *ScheduleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, ok := h.parseWindow(w, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return
	}

	stats, err := h.appointments.Stats(r.Context(), start, end)
	if err != nil {
		respondInternal(w, "compute stats", err)
		return
	}

	completed := stats.ByStatus[model.StatusCompleted]
	completionRate := 0.0
	if stats.Total > 0 {
		completionRate = float64(completed) / float64(stats.Total)
	}

	respondData(w, http.StatusOK, map[string]any{
		"total":            stats.Total,
		"by_status":        stats.ByStatus,
		"completion_rate":  completionRate,
	})
}

func (h *ScheduleHandler) parseWindow(w http.ResponseWriter, startStr, endStr string) (model.TimeOnlyDate, model.TimeOnlyDate, bool) {
	if startStr == "" || endStr == "" {
		respondError(w, http.StatusBadRequest, CodeMissingDates, "start_date and end_date are required")
		return model.TimeOnlyDate{}, model.TimeOnlyDate{}, false
	}
	start, err := parseQueryDate(startStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid start_date")
		return model.TimeOnlyDate{}, model.TimeOnlyDate{}, false
	}
	end, err := parseQueryDate(endStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid end_date")
		return model.TimeOnlyDate{}, model.TimeOnlyDate{}, false
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, CodeInvalidDateRange, "end_date must not be before start_date")
		return model.TimeOnlyDate{}, model.TimeOnlyDate{}, false
	}
	return start, end, true
}

func (h *ScheduleHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into req and runs struct-tag
// validation, writing the appropriate error response and returning false on
// failure; invalid input fails the request with no partial work.
func (h *ScheduleHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, CodeMissingFields, err.Error())
		return false
	}
	return true
}
