package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/apperr"
	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/service"
)

// EncodeMoneyAsNumbers makes decimals marshal as JSON numbers process-wide,
// which also applies to cached report payloads. Call it once at startup,
// before serving.
func EncodeMoneyAsNumbers() {
	decimal.MarshalJSONWithoutQuotes = true
}

const maxBodyBytes = 1 << 20

type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

type Handler struct {
	svc    *service.Service
	log    *logger.Logger
	checks []HealthCheck
}

func NewHandler(svc *service.Service, log *logger.Logger, checks ...HealthCheck) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, log: log, checks: checks}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(r.Context()); err != nil {
			h.log.Error(h.log.WithField(r.Context(), "check", check.Name), "health.check_failed", err)
			results[check.Name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": results})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		h.fail(w, r, badRequest("limit", err))
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		h.fail(w, r, badRequest("offset", err))
		return
	}
	items, err := h.svc.ListProducts(r.Context(), domain.ProductListFilter{
		Search: query.Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, product)
}

// fail writes err as the JSON error envelope. Errors outside the taxonomy are
// logged and reported as internal without leaking their text.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.CodeOf(err) == apperr.CodeInternal {
		h.log.Error(r.Context(), "request.failed", err)
	}
	writeError(w, err)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := parseID(chi.URLParam(r, param))
	if err != nil {
		h.fail(w, r, badRequest(param, err))
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSON(w, r, out); err != nil {
		h.fail(w, r, apperr.Wrap(apperr.CodeValidation, err, err.Error()))
		return false
	}
	return true
}

func badRequest(field string, err error) error {
	return apperr.Validation("invalid request", map[string]string{field: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func parseOptionalBool(raw string) (bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("must be true or false")
	}
	return parsed, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

// parseRange reads from/to calendar dates in loc; to is inclusive.
func parseRange(from, to string, loc *time.Location) (domain.DateRange, error) {
	var r domain.DateRange
	if value := strings.TrimSpace(from); value != "" {
		parsed, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return r, fmt.Errorf("from must be YYYY-MM-DD")
		}
		r.From = parsed
	}
	if value := strings.TrimSpace(to); value != "" {
		parsed, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return r, fmt.Errorf("to must be YYYY-MM-DD")
		}
		r.To = parsed.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return r, fmt.Errorf("from must not be after to")
	}
	return r, nil
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)
	body := &errorBody{Code: code, Message: meta.PublicMessage}
	if code != apperr.CodeInternal {
		if typed := apperr.As(err); typed != nil && typed.Message() != "" {
			body.Message = typed.Message()
		}
	}
	if meta.DetailsAllowed {
		body.Details = apperr.As(err).Details()
	}
	writeJSON(w, meta.HTTPStatus, envelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
