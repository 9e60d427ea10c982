package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/model"
)

const queryDateLayout = "2006-01-02"

// parseQueryDate parses a "YYYY-MM-DD" query parameter into a UTC-normalized
// TimeOnlyDate.
func parseQueryDate(s string) (model.TimeOnlyDate, error) {
	t, err := time.Parse(queryDateLayout, s)
	if err != nil {
		return model.TimeOnlyDate{}, err
	}
	return model.NewTimeOnlyDate(t), nil
}

// generateRequest is the body of POST /schedule/generate.
type generateRequest struct {
	StartDate       model.TimeOnlyDate `json:"start_date" validate:"required"`
	EndDate         model.TimeOnlyDate `json:"end_date" validate:"required"`
	CareReceiverID  *uuid.UUID         `json:"care_receiver_id,omitempty"`
	CareReceiverIDs []uuid.UUID        `json:"care_receiver_ids,omitempty"`
}

func (r generateRequest) receiverIDs() []uuid.UUID {
	if len(r.CareReceiverIDs) > 0 {
		return r.CareReceiverIDs
	}
	if r.CareReceiverID != nil {
		return []uuid.UUID{*r.CareReceiverID}
	}
	return nil
}

// validateWindowRequest is the body of POST /schedule/validate.
type validateWindowRequest struct {
	StartDate model.TimeOnlyDate `json:"start_date" validate:"required"`
	EndDate   model.TimeOnlyDate `json:"end_date" validate:"required"`
}

// analyzeUnscheduledRequest is the body of POST /schedule/analyze-unscheduled.
type analyzeUnscheduledRequest struct {
	CareReceiverID uuid.UUID          `json:"care_receiver" validate:"required"`
	VisitNumber    int                `json:"visit" validate:"required,min=1"`
	Date           model.TimeOnlyDate `json:"date" validate:"required"`
}

// findAvailableRequest is the body of POST /schedule/find-available.
type findAvailableRequest struct {
	CareReceiverID uuid.UUID          `json:"care_receiver_id" validate:"required"`
	Date           model.TimeOnlyDate `json:"date" validate:"required"`
	StartTime      string             `json:"start_time" validate:"required"`
	EndTime        string             `json:"end_time" validate:"required"`
	Requirements   []model.Skill      `json:"requirements,omitempty"`
	DoubleHanded   bool               `json:"double_handed"`
}

// manualAppointmentRequest is the body of POST /schedule/appointments/manual.
type manualAppointmentRequest struct {
	CareReceiverID       uuid.UUID          `json:"care_receiver_id" validate:"required"`
	CareGiverID          uuid.UUID          `json:"care_giver_id" validate:"required"`
	SecondaryCareGiverID *uuid.UUID         `json:"secondary_care_giver_id,omitempty"`
	Date                 model.TimeOnlyDate `json:"date" validate:"required"`
	StartTime            string             `json:"start_time" validate:"required"`
	EndTime              string             `json:"end_time" validate:"required"`
	VisitNumber          int                `json:"visit_number" validate:"required,min=1"`
	Requirements         []model.Skill      `json:"requirements,omitempty"`
	DoubleHanded         bool               `json:"double_handed"`
	Priority             int                `json:"priority"`
}

// statusUpdateRequest is the body of PATCH /schedule/appointments/:id/status.
type statusUpdateRequest struct {
	Status             model.AppointmentStatus `json:"status" validate:"required"`
	CancellationReason string                  `json:"cancellation_reason,omitempty"`
}
