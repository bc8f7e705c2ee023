package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/postbox/internal/config"
)

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}

// Each helper below writes a complete response. Callers must not write
// anything else afterwards.

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error encoding response")
		status = http.StatusInternalServerError
		data, _ = json.Marshal(Message{Message: config.MsgInternalServerError})
	}

	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Error writing response")
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, Message{Message: config.MsgNotFound})
}

func internalServerError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusInternalServerError, Message{Message: config.MsgInternalServerError})
}

func ok(w http.ResponseWriter, r *http.Request, payload any) {
	writeJSON(w, r, http.StatusOK, payload)
}
