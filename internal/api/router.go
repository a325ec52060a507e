package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"graficaos.service/internal/api/handler"
	"graficaos.service/internal/api/middleware"
	"graficaos.service/internal/core"
	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/messaging"
)

// Dependencies holds what the HTTP layer calls into.
type Dependencies struct {
	Punches   *core.PunchService
	Reports   *core.ReportService
	Publisher messaging.EventPublisher
	Tokens    middleware.TokenParser
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps Dependencies) *mux.Router {
	punchHandler := handler.PunchHandler{Service: deps.Punches}
	reportHandler := handler.ReportHandler{Service: deps.Reports, Publisher: deps.Publisher}
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	r := mux.NewRouter()
	r.Use(middleware.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	pontos := api.PathPrefix("/pontos").Subrouter()
	pontos.Use(middleware.Authenticate(deps.Tokens))

	pontos.HandleFunc("/bater", punchHandler.Punch).Methods(http.MethodPost)
	pontos.HandleFunc("/hoje", punchHandler.Today).Methods(http.MethodGet)
	pontos.HandleFunc("/relatorio", reportHandler.Records).Methods(http.MethodGet)
	pontos.HandleFunc("/metricas", reportHandler.Metrics).Methods(http.MethodGet)
	pontos.Handle("/export/email", adminOnly(http.HandlerFunc(reportHandler.EmailReport))).Methods(http.MethodPost)
	pontos.Handle("/export/{format}", adminOnly(http.HandlerFunc(reportHandler.Export))).Methods(http.MethodGet)
	pontos.HandleFunc("/{id}", punchHandler.Get).Methods(http.MethodGet)
	pontos.HandleFunc("", punchHandler.List).Methods(http.MethodGet)

	return r
}
