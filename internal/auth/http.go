package auth

import (
	"errors"
	"net/http"

	"blackjack-lite/internal/web"
)

// Balances is the slice of the chip ledger the account surface reports
// on; satisfied by *ledger.Ledger.
type Balances interface {
	Balance(id uint64) int64
}

// HTTPHandler serves the REST account surface. Replies carry the
// player's chip balance alongside their identity, the same shape the
// gateway's welcome message uses, so a client lands with both in one
// round trip.
type HTTPHandler struct {
	manager  Service
	balances Balances
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type playerReply struct {
	PlayerID     uint64 `json:"player_id"`
	Username     string `json:"username"`
	SessionToken string `json:"session_token,omitempty"`
	Balance      int64  `json:"balance"`
}

func NewHTTPHandler(manager Service, balances Balances) *HTTPHandler {
	return &HTTPHandler{manager: manager, balances: balances}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.credentialHandler(h.manager.Register))
	mux.HandleFunc("/api/auth/login", h.credentialHandler(h.manager.Login))
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
}

// credentialHandler wraps Register and Login, which share request and
// reply shapes and differ only in the operation and its error mapping.
func (h *HTTPHandler) credentialHandler(op func(username, password string) (uint64, string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req credentialsRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		playerID, token, err := op(req.Username, req.Password)
		if err != nil {
			status, msg := credentialError(err)
			web.WriteError(w, status, msg)
			return
		}

		// Resolve the token back for the canonical (normalized) username.
		_, username, _ := h.manager.ResolveSession(token)
		web.WriteJSON(w, http.StatusOK, h.reply(playerID, username, token))
	}
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := web.BearerToken(r)
	if token == "" {
		web.WriteError(w, http.StatusUnauthorized, "missing session token")
		return
	}

	h.manager.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	playerID, username, ok := h.manager.ResolveSession(web.BearerToken(r))
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	web.WriteJSON(w, http.StatusOK, h.reply(playerID, username, ""))
}

func (h *HTTPHandler) reply(playerID uint64, username, token string) playerReply {
	out := playerReply{
		PlayerID:     playerID,
		Username:     username,
		SessionToken: token,
	}
	if h.balances != nil {
		out.Balance = h.balances.Balance(playerID)
	}
	return out
}

func credentialError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	default:
		return http.StatusInternalServerError, "authentication failed"
	}
}
