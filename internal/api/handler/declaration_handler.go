package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/tokenstd/revert-registry/internal/api/middleware"
	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/service"
)

// DeclarationHandler handles the check, registration and lookup endpoints.
type DeclarationHandler struct {
	svc    *service.RegistryService
	logger *zap.Logger
}

func NewDeclarationHandler(svc *service.RegistryService, logger *zap.Logger) *DeclarationHandler {
	return &DeclarationHandler{svc: svc, logger: logger}
}

// Check handles POST /api/v1/check
//
// @Summary     Lint declarations without registering them
// @Tags        declarations
// @Accept      json
// @Produce     json
// @Param       body  body      domain.CheckRequest  true  "Signatures to check"
// @Success     200   {object}  map[string]any
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/check [post]
func (h *DeclarationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := h.svc.Check(r.Context(), req)
	if err != nil {
		mapError(w, err)
		return
	}

	ok := true
	for _, res := range results {
		if !res.OK {
			ok = false
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":      ok,
		"results": results,
	})
}

// Register handles POST /api/v1/declarations
//
// @Summary     Register a declaration
// @Tags        declarations
// @Accept      json
// @Produce     json
// @Param       body  body      domain.RegisterRequest  true  "Declaration payload"
// @Success     201   {object}  domain.Registration
// @Success     200   {object}  domain.Registration  "Idempotent replay: returned existing registration"
// @Failure     409   {object}  map[string]string    "Name registered with different parameters"
// @Failure     422   {object}  map[string]any       "Nonconformant: body carries the violations"
// @Router      /api/v1/declarations [post]
func (h *DeclarationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reg, existed, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.logger.Warn("register declaration failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	respondJSON(w, status, reg)
}

// RegisterBatch handles POST /api/v1/declarations/batch
//
// @Summary  Register up to the batch limit of declarations atomically
// @Tags     declarations
// @Accept   json
// @Produce  json
// @Param    body  body      domain.RegisterBatchRequest  true  "Batch payload"
// @Success  201   {object}  map[string]any
// @Failure  409   {object}  map[string]string
// @Failure  422   {object}  map[string]any
// @Router   /api/v1/declarations/batch [post]
func (h *DeclarationHandler) RegisterBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	regs, err := h.svc.RegisterBatch(r.Context(), req)
	if err != nil {
		h.logger.Warn("register batch failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"registered": regs,
		"total":      len(regs),
	})
}

// List handles GET /api/v1/declarations
//
// @Summary  List registrations with filtering and pagination
// @Tags     declarations
// @Produce  json
// @Param    domain   query     string  false  "Filter by domain (e.g. ERC20)"
// @Param    prefix   query     string  false  "Filter by prefix (Invalid or Insufficient)"
// @Param    subject  query     string  false  "Filter by subject"
// @Param    page     query     int     false  "Page number (default 1)"
// @Param    limit    query     int     false  "Items per page (default 20, max 100)"
// @Success  200      {object}  map[string]any
// @Router   /api/v1/declarations [get]
func (h *DeclarationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	regs, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list declarations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  regs,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// GetByName handles GET /api/v1/declarations/{name}
//
// @Summary  Get a registration by composed error name
// @Tags     declarations
// @Produce  json
// @Param    name  path      string  true  "Composed error name, e.g. ERC20InsufficientBalance"
// @Success  200   {object}  domain.Registration
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/declarations/{name} [get]
func (h *DeclarationHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	reg, err := h.svc.GetByName(r.Context(), name)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reg)
}

// LookupSelector handles GET /api/v1/selectors/{selector}
//
// An unknown selector is not an error: decoding workflows probe selectors
// found in revert data, most of which belong to no registered declaration.
// The matches array is empty in that case.
//
// @Summary  Reverse-lookup registrations by 4-byte selector
// @Tags     declarations
// @Produce  json
// @Param    selector  path      string  true  "4-byte selector, with or without 0x"
// @Success  200       {object}  map[string]any
// @Failure  400       {object}  map[string]string
// @Router   /api/v1/selectors/{selector} [get]
func (h *DeclarationHandler) LookupSelector(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "selector")
	regs, err := h.svc.LookupSelector(r.Context(), raw)
	if err != nil {
		mapError(w, err)
		return
	}

	if regs == nil {
		regs = []*domain.Registration{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"matches": regs,
		"total":   len(regs),
	})
}

// Catalog handles GET /api/v1/catalog
//
// @Summary  The built-in standard catalog with canonical signatures and selectors
// @Tags     declarations
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/catalog [get]
func (h *DeclarationHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Catalog()
	respondJSON(w, http.StatusOK, map[string]any{
		"catalog": entries,
		"total":   len(entries),
	})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if d := q.Get("domain"); d != "" {
		dom := grammar.Domain(d)
		filter.Domain = &dom
	}
	if p := q.Get("prefix"); p != "" {
		pre := grammar.Prefix(p)
		filter.Prefix = &pre
	}
	if s := q.Get("subject"); s != "" {
		sub := grammar.Subject(s)
		filter.Subject = &sub
	}
	return filter
}
