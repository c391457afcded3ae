package opportunities

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/opportunities", h.List)
	r.Post("/opportunities", h.Create)
	r.Get("/opportunities/{id}", h.Get)
	r.Patch("/opportunities/{id}", h.Update)
	r.Post("/opportunities/{id}/status", h.Transition)
}
