package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"graficaos.service/internal/api/middleware"
	"graficaos.service/internal/core"
	"graficaos.service/internal/ports/repository"
)

type PunchHandler struct {
	Service *core.PunchService
}

// Punch registers the caller's next punch of the day.
func (h *PunchHandler) Punch(w http.ResponseWriter, r *http.Request) {
	req, _ := middleware.RequesterFromContext(r.Context())

	rec, err := h.Service.RegisterPunch(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Today returns the caller's record for today, or null before the first punch.
func (h *PunchHandler) Today(w http.ResponseWriter, r *http.Request) {
	req, _ := middleware.RequesterFromContext(r.Context())

	rec, err := h.Service.Today(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *PunchHandler) List(w http.ResponseWriter, r *http.Request) {
	req, _ := middleware.RequesterFromContext(r.Context())
	userID := core.ResolveScope(req, r.URL.Query().Get("userId"))
	if userID != "" && uuid.Validate(userID) != nil {
		writeError(w, r, fmt.Errorf("%w: invalid userId %q", errBadRequest, userID))
		return
	}

	records, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Get returns one record; employees only see their own.
func (h *PunchHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, _ := middleware.RequesterFromContext(r.Context())

	id := mux.Vars(r)["id"]
	if uuid.Validate(id) != nil {
		writeError(w, r, repository.ErrRecordNotFound)
		return
	}

	rec, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !req.IsAdmin() && rec.UserID != req.UserID {
		writeError(w, r, core.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
