package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"outlay/internal/core"
)

type expenseJSON struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	SpentOn     string `json:"spent_on"`
	CreatedAt   string `json:"created_at"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

func toExpenseJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = expenseJSON{
			ID:          e.ID,
			Amount:      e.Amount.String(),
			Category:    e.Category,
			Description: e.Description,
			SpentOn:     e.SpentOn.String(),
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		SpentOn     string `json:"spent_on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.expenses.Create(r.Context(), accountID(r), req.Amount, req.Category, req.Description, req.SpentOn)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseJSON([]core.Expense{created})[0])
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	expenses, warnings, err := s.expenses.List(r.Context(), accountID(r), start, end)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Expenses []expenseJSON `json:"expenses"`
		Warnings []string      `json:"warnings,omitempty"`
	}{
		Expenses: toExpenseJSON(expenses),
		Warnings: warnings,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.expenses.Delete(r.Context(), accountID(r), id); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
