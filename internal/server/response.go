package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message})
}

// writeError maps engine and registry errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		writeMessage(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, quiz.ErrInvalidState):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, quiz.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
