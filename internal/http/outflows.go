package http

import (
	"net/http"

	"backoffice/internal/domain"
)

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	query := r.URL.Query()
	period, err := parseRange(query.Get("from"), query.Get("to"), h.svc.Location())
	if err != nil {
		h.fail(w, r, badRequest("range", err))
		return domain.DateRange{}, false
	}
	return period, true
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListExpenses(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.svc.CreateExpense(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (h *Handler) ListInterests(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListInterests(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) CreateInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.svc.CreateInterest(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (h *Handler) ListLosses(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListLosses(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) CreateLoss(w http.ResponseWriter, r *http.Request) {
	var req lossRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.svc.CreateLoss(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}
