package http

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"account_id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Logout(r.Context(), bearerToken(r)); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.expenses.ProfileFor(r.Context(), accountID(r))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	resp := struct {
		TotalSpent  string        `json:"total_spent"`
		TopCategory *categoryJSON `json:"top_category"`
		Recent      []expenseJSON `json:"recent"`
		Count       int64         `json:"count"`
	}{
		TotalSpent: profile.TotalSpent.String(),
		Recent:     toExpenseJSON(profile.Recent),
		Count:      profile.Count,
	}
	if profile.TopCategory != nil {
		resp.TopCategory = &categoryJSON{
			Category: profile.TopCategory.Category,
			Total:    profile.TopCategory.Total.String(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
