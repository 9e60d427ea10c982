package handler

import (
	"github.com/go-chi/chi/v5"
)

// RegisterScheduleRoutes mounts the scheduling driving surface under /schedule.
func RegisterScheduleRoutes(r chi.Router, h *ScheduleHandler) {
	r.Route("/schedule", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/validate", h.Validate)
		r.Post("/analyze-unscheduled", h.AnalyzeUnscheduled)
		r.Post("/find-available", h.FindAvailable)

		r.Get("/appointments", h.ListAppointments)
		r.Post("/appointments/manual", h.CreateManualAppointment)
		r.Patch("/appointments/{id}/status", h.UpdateAppointmentStatus)
		r.Delete("/appointments/{id}", h.DeleteAppointment)

		r.Get("/unscheduled", h.Unscheduled)
		r.Get("/stats", h.Stats)
	})
}
