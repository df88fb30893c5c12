package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type UserHandler struct {
	Svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{Svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	out, err := h.Svc.List(r.Context(), principal(r), repo.UserFilter{
		Role:  models.Role(query(r, "role")),
		Query: query(r, "q"),
		Page:  repo.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResp(out))
}

func (h *UserHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.Svc.SetActive(r.Context(), principal(r), chi.URLParam(r, "id"), active)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, u)
	}
}
