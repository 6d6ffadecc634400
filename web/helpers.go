package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bububa/itinerary-agents/travel"
)

const bodyLimit = 64 << 10

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

type errorResponse struct {
	Error  string      `json:"error"`
	Kind   travel.Kind `json:"kind,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeFailure(w http.ResponseWriter, f *travel.Failure) {
	writeJSON(w, statusFor(f.Kind), errorResponse{Error: f.Message, Kind: f.Kind, Detail: f.Detail})
}

func statusFor(kind travel.Kind) int {
	switch kind {
	case travel.MissingCredential:
		return http.StatusUnauthorized
	case travel.InvalidInput:
		return http.StatusBadRequest
	case travel.SearchUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// bearerToken returns the API key sent by JSON clients
func bearerToken(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// formInt parses an integer form field. Garbage becomes -1 so validation rejects it.
func formInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
