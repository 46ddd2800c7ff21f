package api

import (
	"net/http"
	"time"

	"github.com/futig/lab-assistant/internal/api/form"
	"github.com/futig/lab-assistant/internal/api/middleware"
	"github.com/futig/lab-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(formHandler *form.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, response.StatusResponse{Status: "healthy"})
	})

	form.RegisterRoutes(r, formHandler)

	return r
}
