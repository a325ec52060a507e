package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"graficaos.service/internal/core"
	"graficaos.service/internal/ports/repository"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to status codes. Storage details never reach
// the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrJourneyAlreadyClosed),
		errors.Is(err, core.ErrPunchOutOfOrder),
		errors.Is(err, core.ErrPunchConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidFormat),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
