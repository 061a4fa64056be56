package http

import (
	"encoding/json"
	"net/http"
)

// resolveResponse is the successful resolution envelope.
type resolveResponse struct {
	Success    bool   `json:"success"`
	User       any    `json:"user"`
	Token      string `json:"token"`
	UserSource string `json:"userSource"`
}

// failureResponse is the shared shape of every non-2xx body.
type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteResolved writes the 200 resolution envelope.
func WriteResolved(w http.ResponseWriter, user any, token, userSource string) {
	writeJSON(w, http.StatusOK, resolveResponse{
		Success:    true,
		User:       user,
		Token:      token,
		UserSource: userSource,
	})
}

// WriteAccessDenied writes the 403 policy-rejection envelope with a
// machine-readable reason and a human message.
func WriteAccessDenied(w http.ResponseWriter, reason, message string) {
	writeJSON(w, http.StatusForbidden, failureResponse{
		Success: false,
		Error:   "Access Denied",
		Message: message,
		Details: map[string]string{"reason": reason},
	})
}

// WriteBadRequest writes the 400 input-error envelope.
func WriteBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, failureResponse{
		Success: false,
		Error:   "Bad Request",
		Message: message,
	})
}

// WriteInternalError writes the 500 envelope with an error detail.
func WriteInternalError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusInternalServerError, failureResponse{
		Success: false,
		Error:   "Internal Error",
		Message: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
