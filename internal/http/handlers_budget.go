package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	categories := s.svc.BudgetCategories()
	statuses := make([]core.BudgetStatus, 0, len(categories))
	for _, c := range categories {
		status, err := s.svc.BudgetStatus(c)
		if err != nil {
			respondError(w, r, err)
			return
		}
		statuses = append(statuses, status)
	}
	writeJSON(w, r, http.StatusOK, statuses)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.BudgetStatus(r.PathValue("category"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Amount == nil {
		respondError(w, r, badRequest("field \"amount\" is required"))
		return
	}
	if err := s.svc.SetBudget(r.Context(), category, *req.Amount); err != nil {
		respondError(w, r, err)
		return
	}
	status, err := s.svc.BudgetStatus(category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}
