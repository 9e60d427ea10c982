package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// RunSummary is the post-run notification payload for a generate operation.
type RunSummary struct {
	TotalScheduled         int `json:"total_scheduled"`
	TotalFailed            int `json:"total_failed"`
	CareReceiversProcessed int `json:"care_receivers_processed"`
	ReceiversNotFound      int `json:"receivers_not_found,omitempty"`
}

// ManualScheduleEvent is emitted when an appointment is created outside the
// generate flow, via a direct manual-appointment request.
type ManualScheduleEvent struct {
	AppointmentID  string
	CareGiverID    string
	CareReceiverID string
}

// Notifier publishes scheduling events to the surrounding system's
// notification dispatch; this package only owns the seam. Delivery failures
// must never abort the core operation, so implementations should log and
// swallow their own errors.
type Notifier interface {
	NotifyRunComplete(ctx context.Context, summary RunSummary)
	NotifyManualSchedule(ctx context.Context, event ManualScheduleEvent)
}

// LoggingNotifier is the default Notifier: it logs every event at Info and
// never fails, standing in for the real notification publisher / websocket
// fan-out that lives outside the scheduling core.
type LoggingNotifier struct{}

// NewLoggingNotifier creates a LoggingNotifier.
func NewLoggingNotifier() *LoggingNotifier {
	return &LoggingNotifier{}
}

// NotifyRunComplete logs a generate run's summary.
func (LoggingNotifier) NotifyRunComplete(_ context.Context, summary RunSummary) {
	log.Info().
		Int("total_scheduled", summary.TotalScheduled).
		Int("total_failed", summary.TotalFailed).
		Int("care_receivers_processed", summary.CareReceiversProcessed).
		Int("receivers_not_found", summary.ReceiversNotFound).
		Msg("schedule generation run complete")
}

// NotifyManualSchedule logs a manually created appointment.
func (LoggingNotifier) NotifyManualSchedule(_ context.Context, event ManualScheduleEvent) {
	log.Info().
		Str("appointment_id", event.AppointmentID).
		Str("care_giver_id", event.CareGiverID).
		Str("care_receiver_id", event.CareReceiverID).
		Msg("manual appointment scheduled")
}
