package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type balanceResponse struct {
	Balance       float64 `json:"balance"`
	MonthlySpend  float64 `json:"monthly_spend"`
	MonthlyIncome float64 `json:"monthly_income"`
}

type summaryResponse struct {
	Month            string              `json:"month"`
	Spending         float64             `json:"spending"`
	Income           float64             `json:"income"`
	CategoryTotals   core.CategoryTotals `json:"category_totals"`
	CategorySpending core.CategoryTotals `json:"category_spending"`
}

// handleBalance reports the running balance plus the current month's flows.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	summary := s.summary(r, s.svc.CurrentMonth())
	writeJSON(w, r, http.StatusOK, balanceResponse{
		Balance:       s.repo.Balance(),
		MonthlySpend:  summary.Spending,
		MonthlyIncome: summary.Income,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	m, err := parseMonth(r.URL.Query(), s.svc.CurrentMonth())
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary := s.summary(r, m)
	writeJSON(w, r, http.StatusOK, summaryResponse{
		Month:            summary.Month.String(),
		Spending:         summary.Spending,
		Income:           summary.Income,
		CategoryTotals:   summary.CategoryTotals,
		CategorySpending: summary.CategorySpending,
	})
}

// handleCategoryData returns the spending per category as a JSON object, for
// charting.
func (s *Server) handleCategoryData(w http.ResponseWriter, r *http.Request) {
	m, err := parseMonth(r.URL.Query(), s.svc.CurrentMonth())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.summary(r, m).CategorySpending)
}

// summary serves m from the cache, computing it on a miss. A summary whose
// computation overlapped a write is returned but not cached.
func (s *Server) summary(r *http.Request, m core.Month) core.MonthSummary {
	if cached, ok := s.summaries.Get(m); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Summary cache hit", log.FieldMonth, m.String())
		return cached
	}
	gen := s.summaryGeneration()
	summary := s.svc.MonthlySummary(m)
	if !s.storeSummary(gen, summary) {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Ledger changed during summary, not caching", log.FieldMonth, m.String())
	}
	return summary
}
