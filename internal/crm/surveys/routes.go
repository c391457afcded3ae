package surveys

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/surveys", h.List)
	r.Post("/surveys", h.Create)
	r.Get("/surveys/{id}", h.Get)
	r.Patch("/surveys/{id}", h.Update)
}
