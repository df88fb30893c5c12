package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type ProviderHandler struct {
	Svc *services.ProviderService
}

func NewProviderHandler(svc *services.ProviderService) *ProviderHandler {
	return &ProviderHandler{Svc: svc}
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProviderInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := h.Svc.Create(r.Context(), principal(r), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	f := repo.ProviderFilter{
		Query: query(r, "q"),
		Page:  repo.Page{Limit: limit, Offset: offset},
	}
	if v := query(r, "active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "active must be true or false", nil)
			return
		}
		f.Active = &b
	}
	out, err := h.Svc.List(r.Context(), principal(r), f)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResp(out))
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProviderInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := h.Svc.Update(r.Context(), principal(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProviderHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.Svc.SetActive(r.Context(), principal(r), chi.URLParam(r, "id"), active)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}
