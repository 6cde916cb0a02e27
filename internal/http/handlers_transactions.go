package http

import (
	"net/http"

	"fintrack/internal/core"
)

func toViews(txs []core.Transaction) []core.FullView {
	views := make([]core.FullView, 0, len(txs))
	for _, t := range txs {
		views = append(views, t.FullView())
	}
	return views
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toViews(s.repo.FindAll(f)))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	date, amount, err := req.parse()
	if err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.svc.CreateTransaction(r.Context(), date, amount, req.Category, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.ledgerChanged()
	writeJSON(w, r, http.StatusCreated, t.FullView())
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	t, ok := s.repo.FindByID(id)
	if !ok {
		respondError(w, r, core.ErrTransactionNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, t.FullView())
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	patch, err := decodePatch(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.svc.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.ledgerChanged()
	writeJSON(w, r, http.StatusOK, t.FullView())
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.ledgerChanged()
	w.WriteHeader(http.StatusNoContent)
}
