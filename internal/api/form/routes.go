package form

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers form routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get(FormPath, h.Page)
	r.Post(SubmitPath, h.Submit)
}
