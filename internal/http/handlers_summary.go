package http

import (
	"net/http"
	"time"
)

// handleSummary answers the dashboard aggregates: exact totals as decimal
// strings plus float series for charts. Floats appear only here, at the
// presentation boundary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	summary, warnings, err := s.expenses.Summarize(r.Context(), accountID(r), start, end)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	type monthJSON struct {
		Month string `json:"month"`
		Total string `json:"total"`
	}
	resp := struct {
		ByCategory  []categoryJSON `json:"by_category"`
		ByMonth     []monthJSON    `json:"by_month"`
		GrandTotal  string         `json:"grand_total"`
		TopCategory *categoryJSON  `json:"top_category"`

		// Chart series; floats, not for arithmetic.
		CategoryLabels []string  `json:"category_labels"`
		CategoryValues []float64 `json:"category_values"`
		MonthLabels    []string  `json:"month_labels"`
		MonthValues    []float64 `json:"month_values"`

		Warnings []string `json:"warnings,omitempty"`
	}{
		GrandTotal: summary.GrandTotal.String(),
		Warnings:   warnings,
	}

	for _, c := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryJSON{Category: c.Category, Total: c.Total.String()})
		resp.CategoryLabels = append(resp.CategoryLabels, c.Category)
		resp.CategoryValues = append(resp.CategoryValues, c.Total.Float64())
	}
	for _, m := range summary.ByMonth {
		resp.ByMonth = append(resp.ByMonth, monthJSON{Month: m.Month, Total: m.Total.String()})
		resp.MonthLabels = append(resp.MonthLabels, m.Month)
		resp.MonthValues = append(resp.MonthValues, m.Total.Float64())
	}
	if summary.TopCategory != nil {
		resp.TopCategory = &categoryJSON{
			Category: summary.TopCategory.Category,
			Total:    summary.TopCategory.Total.String(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExportCSV streams the caller's full expense history as a CSV
// attachment named for the current UTC day.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := s.expenses.ExportCSV(r.Context(), accountID(r))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
