package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/jobcard"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type JobCardHandler struct {
	Svc       *services.JobCardService
	MaxUpload int64
}

func NewJobCardHandler(svc *services.JobCardService, maxUpload int64) *JobCardHandler {
	return &JobCardHandler{Svc: svc, MaxUpload: maxUpload}
}

// List serves every role; the service narrows the filter to what the caller may see.
func (h *JobCardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	out, err := h.Svc.List(r.Context(), principal(r), repo.JobCardFilter{
		CompanyID:  query(r, "company_id"),
		ProviderID: query(r, "provider_id"),
		Status:     models.JobStatus(query(r, "status")),
		Query:      query(r, "q"),
		Page:       repo.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResp(out))
}

func (h *JobCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	c, err := h.Svc.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, jobCardView{JobCard: c, AllowedActions: jobcard.Allowed(c.Status, p.Role)})
}

// jobCardView tells the client which lifecycle buttons to show.
type jobCardView struct {
	models.JobCard
	AllowedActions []jobcard.Action `json:"allowed_actions"`
}

func (h *JobCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateJobCardInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), principal(r), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *JobCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateJobCardInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Update(r.Context(), principal(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *JobCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- lifecycle ----------

type transitionReq struct {
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
	ProviderID string `json:"provider_id"`
}

func (h *JobCardHandler) decodeTransition(w http.ResponseWriter, r *http.Request) (transitionReq, error) {
	var req transitionReq
	if r.ContentLength == 0 {
		return req, nil
	}
	err := httpx.DecodeJSON(w, r, &req)
	return req, err
}

func (h *JobCardHandler) respond(w http.ResponseWriter, r *http.Request, c models.JobCard, err error) {
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *JobCardHandler) Accept(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Accept(r.Context(), principal(r), chi.URLParam(r, "id"))
	h.respond(w, r, c, err)
}

func (h *JobCardHandler) Decline(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeTransition(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Decline(r.Context(), principal(r), chi.URLParam(r, "id"), req.Reason)
	h.respond(w, r, c, err)
}

func (h *JobCardHandler) Start(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Start(r.Context(), principal(r), chi.URLParam(r, "id"))
	h.respond(w, r, c, err)
}

func (h *JobCardHandler) Complete(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeTransition(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Complete(r.Context(), principal(r), chi.URLParam(r, "id"), req.Notes)
	h.respond(w, r, c, err)
}

func (h *JobCardHandler) Assign(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeTransition(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Assign(r.Context(), principal(r), chi.URLParam(r, "id"), req.ProviderID)
	h.respond(w, r, c, err)
}

func (h *JobCardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Cancel(r.Context(), principal(r), chi.URLParam(r, "id"))
	h.respond(w, r, c, err)
}

// ---------- photos ----------

// multipart overhead allowed on top of the photo itself
const formSlack = 64 << 10

// UploadPhoto takes multipart/form-data with a "photo" file and an optional "caption".
func (h *JobCardHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload+formSlack)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErr(w, r, services.ErrTooLarge)
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "multipart form with a photo field expected", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("photo")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "photo file is required", nil)
		return
	}
	defer file.Close()

	ph, err := h.Svc.UploadPhoto(r.Context(), principal(r), chi.URLParam(r, "id"), services.UploadPhotoInput{
		Body:    file,
		Caption: r.FormValue("caption"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ph)
}

func (h *JobCardHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListPhotos(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResp(out))
}

func (h *JobCardHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	ph, rc, err := h.Svc.OpenPhoto(r.Context(), principal(r), chi.URLParam(r, "id"), chi.URLParam(r, "photoID"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", ph.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(ph.SizeBytes, 10))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
