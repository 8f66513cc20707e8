package ledger

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"blackjack-lite/internal/auth"
	"blackjack-lite/internal/web"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger *Ledger
}

func NewHTTPHandler(authService auth.Service, l *Ledger) *HTTPHandler {
	return &HTTPHandler{
		auth:   authService,
		ledger: l,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/ledger/balance", h.handleBalance)
	mux.HandleFunc("/api/ledger/replenish", h.handleReplenish)
	mux.HandleFunc("/api/ledger/leaderboard", h.handleLeaderboard)
}

func (h *HTTPHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, ok := h.resolvePlayerID(r)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"balance":   h.ledger.Balance(playerID),
	})
}

func (h *HTTPHandler) handleReplenish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	playerID, ok := h.resolvePlayerID(r)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	balance, err := h.ledger.Replenish(playerID)
	if err != nil {
		if errors.Is(err, ErrStillSolvent) {
			web.WriteError(w, http.StatusConflict, "balance is not empty")
			return
		}
		web.WriteError(w, http.StatusInternalServerError, "replenish failed")
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"balance":   balance,
	})
}

func (h *HTTPHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	entries := h.ledger.Leaderboard(limit)

	items := make([]map[string]any, 0, len(entries))
	for i, e := range entries {
		items = append(items, map[string]any{
			"rank":      i + 1,
			"player_id": e.ID,
			"balance":   e.Balance,
		})
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) resolvePlayerID(r *http.Request) (uint64, bool) {
	token := web.BearerToken(r)
	if token == "" {
		return 0, false
	}
	playerID, _, ok := h.auth.ResolveSession(token)
	if !ok {
		return 0, false
	}
	return playerID, true
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 15
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 15
	}
	if n > 100 {
		return 100
	}
	return n
}
