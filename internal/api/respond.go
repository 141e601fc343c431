package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

const maxBodyBytes = 8 << 20

// malformedMessage is shown instead of the model's raw output.
const malformedMessage = "the model returned an analysis that could not be read, please try again"

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// fail maps a service error onto a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *domain.MalformedResponseError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPrecondition):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &malformed):
		// The evaluator already logged the raw text at error level.
		s.logger.Debug("unreadable model output", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, malformedMessage)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// days reads an optional positive day window. Anything else means no window.
func days(r *http.Request) *int {
	n, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func required(name, value string) error {
	if value == "" {
		return domain.Validationf("%s is required", name)
	}
	return nil
}
