package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

// CompanyHandler serves the admin's company moderation endpoints.
type CompanyHandler struct {
	Svc *services.CompanyService
}

func NewCompanyHandler(svc *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{Svc: svc}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	out, err := h.Svc.List(r.Context(), principal(r), repo.CompanyFilter{
		Status: models.CompanyStatus(query(r, "status")),
		Query:  query(r, "q"),
		Page:   repo.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResp(out))
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

type reasonReq struct {
	Reason string `json:"reason"`
}

// decodeReason tolerates an empty body; the service decides whether a reason is required.
func decodeReason(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.ContentLength == 0 {
		return "", nil
	}
	var req reasonReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}

type moveFunc func(ctx context.Context, p services.Principal, id, reason string) (models.Company, error)

func (h *CompanyHandler) move(fn moveFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reason, err := decodeReason(w, r)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		c, err := fn(r.Context(), principal(r), chi.URLParam(r, "id"), reason)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}

func (h *CompanyHandler) Approve() http.HandlerFunc {
	return h.move(func(ctx context.Context, p services.Principal, id, _ string) (models.Company, error) {
		return h.Svc.Approve(ctx, p, id)
	})
}

func (h *CompanyHandler) Reject() http.HandlerFunc { return h.move(h.Svc.Reject) }

func (h *CompanyHandler) Suspend() http.HandlerFunc { return h.move(h.Svc.Suspend) }

func (h *CompanyHandler) Reactivate() http.HandlerFunc {
	return h.move(func(ctx context.Context, p services.Principal, id, _ string) (models.Company, error) {
		return h.Svc.Reactivate(ctx, p, id)
	})
}

type list[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func listResp[T any](items []T) list[T] {
	if items == nil {
		items = []T{}
	}
	return list[T]{Items: items, Count: len(items)}
}
