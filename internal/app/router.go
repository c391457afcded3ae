package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/infowows/trg-crm-sub000/internal/auth"
	"github.com/infowows/trg-crm-sub000/internal/crm/care"
	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/opportunities"
	"github.com/infowows/trg-crm-sub000/internal/crm/quotations"
	"github.com/infowows/trg-crm-sub000/internal/crm/surveys"
	"github.com/infowows/trg-crm-sub000/internal/observability"
	"github.com/infowows/trg-crm-sub000/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	TokenManager       *auth.TokenManager
	AuthHandler        *auth.Handler
	CustomerHandler    *customers.Handler
	OpportunityHandler *opportunities.Handler
	CareHandler        *care.Handler
	SurveyHandler      *surveys.Handler
	QuotationHandler   *quotations.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with CRM defaults. Everything under
// /api requires a verified bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(params.TokenManager))
		params.CustomerHandler.MountRoutes(r)
		params.OpportunityHandler.MountRoutes(r)
		params.CareHandler.MountRoutes(r)
		params.SurveyHandler.MountRoutes(r)
		params.QuotationHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
