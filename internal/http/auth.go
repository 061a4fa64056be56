package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/orbitdesk/portal/internal/service"
)

// resolveRequest mirrors the resolver endpoint's request body.
type resolveRequest struct {
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	AuthProvider   string `json:"authProvider"`
	PlayerID       string `json:"oneSignalPlayerId"`
	SubscriptionID string `json:"oneSignalSubscriptionId"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	result, err := h.resolver.Resolve(r.Context(), service.ResolveInput{
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		AuthProvider:   req.AuthProvider,
		PlayerID:       req.PlayerID,
		SubscriptionID: req.SubscriptionID,
	})
	if err != nil {
		var deniedErr *service.AccessDeniedError
		switch {
		case errors.Is(err, service.ErrMissingContact):
			WriteBadRequest(w, "email or phone number is required")
		case errors.As(err, &deniedErr):
			WriteAccessDenied(w, string(deniedErr.Reason), deniedErr.Message)
		default:
			log.Error().Err(err).Msg("resolve: unexpected failure")
			WriteInternalError(w, err.Error())
		}
		return
	}

	WriteResolved(w, result.User, result.Token, result.UserSource)
}
