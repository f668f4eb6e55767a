package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// AdminLeadHandler serves the authenticated lead management routes.
type AdminLeadHandler struct {
	ListUC      *usecase.ListLeadsUseCase
	LifecycleUC *usecase.LeadLifecycleUseCase
	ExportUC    *usecase.ExportLeadsUseCase
	Now         func() time.Time
}

func NewAdminLeadHandler(list *usecase.ListLeadsUseCase, lifecycle *usecase.LeadLifecycleUseCase, export *usecase.ExportLeadsUseCase) *AdminLeadHandler {
	return &AdminLeadHandler{
		ListUC:      list,
		LifecycleUC: lifecycle,
		ExportUC:    export,
		Now:         time.Now,
	}
}

// List handles GET /leads?status=&source=&search=&page=&limit=&all=
func (h *AdminLeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, limit, errs := usecase.ParsePageParams(q.Get("page"), q.Get("limit"))
	all := false
	if raw := q.Get("all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, usecase.ValidationError{Field: "all", Message: "must be true or false"})
		}
		all = v
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	out, err := h.ListUC.Execute(r.Context(), usecase.ListLeadsInput{
		Status: q.Get("status"),
		Source: q.Get("source"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
		All:    all,
	})
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *AdminLeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.ListUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Update handles PATCH /leads/{id} with {status?, notes?, version?}.
func (h *AdminLeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body",
			[]usecase.ValidationError{{Field: "body", Message: "must be a JSON object"}})
		return
	}
	input.ID = chi.URLParam(r, "id")

	lead, err := h.LifecycleUC.Update(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	if input.Status != nil {
		middleware.RecordStatusChange(string(lead.Status))
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminLeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.LifecycleUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /leads/export with the same filters as List.
func (h *AdminLeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, errs := usecase.BuildLeadFilter(q.Get("status"), q.Get("source"), q.Get("search"))
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	var buf bytes.Buffer
	if _, err := h.ExportUC.Execute(r.Context(), filter, &buf); err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", h.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
