package handlers

import (
	"net/http"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type DashboardHandler struct {
	Svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

func (h *DashboardHandler) Company(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.CompanyStats(r.Context(), principal(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.AdminStats(r.Context(), principal(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
