package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"graficaos.service/internal/api/middleware"
	"graficaos.service/internal/core"
	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/messaging"
)

const defaultEmailFormat = "xlsx"

type ReportHandler struct {
	Service   *core.ReportService
	Publisher messaging.EventPublisher
}

var validate = validator.New()

type EmailReportRequest struct {
	UserID    string `json:"userId" validate:"omitempty,uuid"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Recipient string `json:"recipient" validate:"required,email"`
	Format    string `json:"format" validate:"omitempty,oneof=csv xlsx pdf"`
}

func (h *ReportHandler) Records(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.Service.Records(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ReportHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snapshot, err := h.Service.Metrics(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Export streams the range as a csv, xlsx or pdf attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.Service.Export(r.Context(), filter, mux.Vars(r)["format"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

// EmailReport queues a report for the email worker.
func (h *ReportHandler) EmailReport(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.RequesterFromContext(r.Context())

	var req EmailReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if _, err := core.ParseRange(req.StartDate, req.EndDate); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = defaultEmailFormat
	}

	event := messaging.ReportEmailEvent{
		Kind:        messaging.KindReportEmail,
		RequestedBy: requester.UserID,
		UserID:      req.UserID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Recipient:   req.Recipient,
		Format:      req.Format,
		RequestedAt: time.Now().UTC(),
	}
	if err := h.Publisher.PublishEmail(r.Context(), event); err != nil {
		writeError(w, r, fmt.Errorf("failed to queue report email: %w", err))
		return
	}

	log.Ctx(r.Context()).Info().Str("recipient", req.Recipient).Str("format", req.Format).Msg("Report email queued")
	writeJSON(w, http.StatusAccepted, map[string]any{"message": "Report queued for delivery."})
}

// filterFromQuery reads userId, startDate and endDate, pinning employees to
// their own records.
func filterFromQuery(r *http.Request) (model.RecordFilter, error) {
	q := r.URL.Query()
	rng, err := core.ParseRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		return model.RecordFilter{}, err
	}
	userID := q.Get("userId")
	if userID != "" && uuid.Validate(userID) != nil {
		return model.RecordFilter{}, fmt.Errorf("%w: invalid userId %q", errBadRequest, userID)
	}
	req, _ := middleware.RequesterFromContext(r.Context())
	return model.RecordFilter{UserID: core.ResolveScope(req, userID), Range: rng}, nil
}
