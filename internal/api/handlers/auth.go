package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type AuthHandler struct {
	Svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type tokenResp struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"` // access süresi, saniye
	Profile      services.Profile `json:"profile"`
}

func sessionResp(s services.Session) tokenResp {
	return tokenResp{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    int64(time.Until(s.AccessExp).Truncate(time.Second).Seconds()),
		Profile:      s.Profile,
	}
}

func (h *AuthHandler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterCompanyInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	prof, err := h.Svc.RegisterCompany(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, prof)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	sess, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResp(sess))
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "refresh_token required", nil)
		return
	}
	sess, err := h.Svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResp(sess))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	prof, err := h.Svc.Me(r.Context(), principal(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, prof)
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Svc.ChangePassword(r.Context(), principal(r), req.OldPassword, req.NewPassword); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
