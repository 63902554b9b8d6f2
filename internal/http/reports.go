package http

import (
	"bytes"
	"fmt"
	"net/http"

	"backoffice/internal/excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.PortfolioSummary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.FinancialSummary(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.MonthlySummary(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *Handler) ExportMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.MonthlySummary(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteMonthlyReport(&buf, summary); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="monthly-%d.xlsx"`, summary.Year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// year reads ?year=; zero means the current year.
func (h *Handler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := parseOptionalInt(r.URL.Query().Get("year"), 0)
	if err != nil {
		h.fail(w, r, badRequest("year", err))
		return 0, false
	}
	return year, true
}
