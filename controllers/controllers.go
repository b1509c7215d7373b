package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"pawhome_server/services"
)

// writeJSON writes v with the given status as a JSON body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGuardError translates the service error taxonomy to the HTTP
// surface: 401 unauthenticated, 403 forbidden, 404 not found, 504 store
// timeout, 500 everything else.
func writeGuardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "No active session.")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Unauthorized action.")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, services.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "Backing store timed out.")
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// sessionToken extracts the caller's session token from the Authorization
// header ("Bearer <token>"), falling back to X-Session-Token.
func sessionToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Session-Token")
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the PawHome API."})
}
