package quotations

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotations", h.List)
	r.Post("/quotations", h.Create)
	r.Get("/quotations/{id}", h.Get)
	r.Patch("/quotations/{id}", h.Update)
	r.Post("/quotations/{id}/unit-price", h.SetUnitPrice)
	r.Post("/quotations/{id}/volume", h.SetVolume)
	r.Post("/quotations/{id}/status", h.Transition)
	r.Get("/quotations/{id}/aggregate", h.Aggregate)
}
