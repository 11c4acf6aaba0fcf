package operator

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type addSubscriberRequest struct {
	UserID int64 `json:"user_id"`
}

type setBalanceRequest struct {
	StarBalance int64 `json:"star_balance"`
}

type subscriberResponse struct {
	UserID      int64 `json:"user_id"`
	StarBalance int64 `json:"star_balance"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list subscribers failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	resp := make([]subscriberResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, subscriberResponse{
			UserID:      sub.UserID,
			StarBalance: sub.StarBalance,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": resp})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addSubscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := s.store.Add(r.Context(), req.UserID); err != nil {
		s.logger.Error("add subscriber failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	s.logger.Info("subscriber added", "user_id", req.UserID)
	writeJSON(w, http.StatusCreated, subscriberResponse{UserID: req.UserID})
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Negative balances are accepted on purpose: an override is an operator
	// decision, not ours to second-guess.
	if err := s.store.SetBalance(r.Context(), userID, req.StarBalance); err != nil {
		s.logger.Error("set balance failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	s.logger.Info("balance overridden", "user_id", userID, "star_balance", req.StarBalance)
	writeJSON(w, http.StatusOK, subscriberResponse{UserID: userID, StarBalance: req.StarBalance})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
