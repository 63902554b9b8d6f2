package http

import (
	"net/http"

	"backoffice/internal/apperr"
	"backoffice/internal/domain"
	"backoffice/internal/excel"
)

const maxUploadBytes = 32 << 20

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	purchased, err := parseRange(query.Get("from"), query.Get("to"), h.svc.Location())
	if err != nil {
		h.fail(w, r, badRequest("range", err))
		return
	}
	reports, err := h.svc.ListBatches(r.Context(), domain.BatchListFilter{
		Status:    domain.BatchStatus(query.Get("status")),
		Purchased: purchased,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, reports)
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.CreateBatch(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, report)
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	batch, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, batch)
}

// BatchMetrics returns the batch with its allocation, summary and metrics.
func (h *Handler) BatchMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.svc.EvaluateBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.BatchPatchInput
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.UpdateBatch(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) UpdateBatchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.BatchStatusInput
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBatch(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req addItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.AddItems(r.Context(), id, req.Items)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// RemoveItems takes {"item_ids": [...], "force": bool}; ?force=true also works.
func (h *Handler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req removeItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	force, err := parseOptionalBool(r.URL.Query().Get("force"))
	if err != nil {
		h.fail(w, r, badRequest("force", err))
		return
	}
	report, err := h.svc.RemoveItems(r.Context(), id, req.ItemIDs, req.Force || force)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req itemQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.UpdateItemQuantity(r.Context(), id, itemID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req domain.MoveItemInput
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.MoveItem(r.Context(), id, itemID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (h *Handler) RecordDraw(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req domain.DrawInput
	if !h.decode(w, r, &req) {
		return
	}
	draw, err := h.svc.RecordDraw(r.Context(), id, itemID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, draw)
}

// ImportItems adds the rows of an uploaded xlsx ("file" field) to the batch.
func (h *Handler) ImportItems(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.fail(w, r, apperr.Validation("failed to parse multipart form", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, apperr.Validation("file field is required", nil))
		return
	}
	defer file.Close()

	rows, err := excel.ParseBatchItems(file)
	if err != nil {
		h.fail(w, r, apperr.Wrap(apperr.CodeValidation, err, err.Error()))
		return
	}
	report, err := h.svc.ImportItems(r.Context(), id, rows)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info(h.log.WithFields(r.Context(), map[string]any{
		"file_name": header.Filename,
		"rows":      len(rows),
	}), "batch.items_imported")
	writeData(w, http.StatusOK, report)
}
