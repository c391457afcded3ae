package care

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/care", h.List)
	r.Post("/care", h.Create)
	r.Get("/care/{id}", h.Get)
	r.Patch("/care/{id}", h.Update)
	r.Post("/care/{id}/status", h.Close)
	r.Post("/care/{id}/attachments", h.Attach)
}
