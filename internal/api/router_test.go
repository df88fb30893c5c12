package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/config"
	"github.com/baharkarakas/jobcard-backend/internal/repository/memory"
	"github.com/baharkarakas/jobcard-backend/internal/services"
	"github.com/baharkarakas/jobcard-backend/internal/storage"
)

const pw = "s3cret-pass"

type testAPI struct {
	t *testing.T
	h http.Handler
}

func newTestAPI(t *testing.T, ping func(context.Context) error) *testAPI {
	t.Helper()
	store := memory.New()
	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm := auth.NewTokenManager("access", "refresh", "test", 15*time.Minute, time.Hour)

	authSvc := services.NewAuthService(store, tm, log)
	_, err = authSvc.EnsureAdmin(context.Background(), "admin@jobcards.io", pw)
	require.NoError(t, err)

	cfg := config.Config{MaxUploadBytes: 1 << 20, CORSOrigins: []string{"*"}}
	h := NewRouter(RouterDeps{
		Cfg:             cfg,
		Log:             log,
		TM:              tm,
		AuthSvc:         authSvc,
		CompanySvc:      services.NewCompanyService(store, log),
		UserSvc:         services.NewUserService(store),
		ProviderSvc:     services.NewProviderService(store),
		JobCardSvc:      services.NewJobCardService(store, blobs, nil, cfg.MaxUploadBytes, log),
		NotificationSvc: services.NewNotificationService(store, log),
		DashboardSvc:    services.NewDashboardService(store),
		Ping:            ping,
	})
	return &testAPI{t: t, h: h}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type session struct {
	AccessToken string `json:"access_token"`
	Profile     struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Company *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"company"`
	} `json:"profile"`
}

func (a *testAPI) login(email string) session {
	a.t.Helper()
	var s session
	code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": pw}, &s)
	require.Equal(a.t, http.StatusOK, code)
	require.NotEmpty(a.t, s.AccessToken)
	return s
}

type idStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestRouter_Health(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := newTestAPI(t, func(context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	down.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_AuthAndRoles(t *testing.T) {
	a := newTestAPI(t, nil)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil))

	var apiErr struct{ Code string }
	code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@jobcards.io", "password": "nope-nope"}, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", apiErr.Code)

	admin := a.login("admin@jobcards.io")
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/auth/me", admin.AccessToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/v1/company/stats", admin.AccessToken, nil, nil))
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/admin/stats", admin.AccessToken, nil, nil))

	code = a.do(http.MethodPost, "/api/v1/auth/register-company", "", map[string]string{"company_name": "X"}, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "validation_failed", apiErr.Code)

	code = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "a@b.io", "password": "x", "extra": 1}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_JobCardFlow(t *testing.T) {
	a := newTestAPI(t, nil)

	// company signs up and waits for approval
	code := a.do(http.MethodPost, "/api/v1/auth/register-company", "", map[string]string{
		"company_name":  "Acme Servis",
		"company_email": "office@acme.io",
		"owner_name":    "Ayşe Yılmaz",
		"owner_email":   "owner@acme.io",
		"password":      pw,
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	owner := a.login("owner@acme.io")
	require.NotNil(t, owner.Profile.Company)
	assert.Equal(t, "pending", owner.Profile.Company.Status)

	var apiErr struct{ Code string }
	code = a.do(http.MethodPost, "/api/v1/company/job-cards", owner.AccessToken, map[string]string{"title": "Fix boiler"}, &apiErr)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "company_not_approved", apiErr.Code)

	admin := a.login("admin@jobcards.io")
	var company idStatus
	code = a.do(http.MethodPost, "/api/v1/admin/companies/"+owner.Profile.Company.ID+"/approve", admin.AccessToken, nil, &company)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", company.Status)

	code = a.do(http.MethodPost, "/api/v1/admin/companies/"+owner.Profile.Company.ID+"/reactivate", admin.AccessToken, nil, &apiErr)
	assert.Equal(t, http.StatusConflict, code)

	// provider onboarding
	var prov idStatus
	code = a.do(http.MethodPost, "/api/v1/company/providers", owner.AccessToken, map[string]string{
		"name": "Mehmet Usta", "email": "mehmet@acme.io", "password": pw, "specialty": "boilers",
	}, &prov)
	require.Equal(t, http.StatusCreated, code)
	worker := a.login("mehmet@acme.io")

	var card idStatus
	code = a.do(http.MethodPost, "/api/v1/company/job-cards", owner.AccessToken, map[string]string{
		"title": "Fix boiler", "location": "Kadıköy", "priority": "high", "provider_id": prov.ID,
	}, &card)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", card.Status)

	var listed struct {
		Items []idStatus `json:"items"`
		Count int        `json:"count"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/provider/job-cards", worker.AccessToken, nil, &listed))
	assert.Equal(t, 1, listed.Count)

	base := "/api/v1/provider/job-cards/" + card.ID
	var view struct {
		Status         string   `json:"status"`
		AllowedActions []string `json:"allowed_actions"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, base, worker.AccessToken, nil, &view))
	assert.ElementsMatch(t, []string{"accept", "decline"}, view.AllowedActions)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/company/job-cards/"+card.ID, owner.AccessToken, nil, &view))
	assert.ElementsMatch(t, []string{"assign", "cancel"}, view.AllowedActions)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/accept", worker.AccessToken, nil, &card))
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, base, worker.AccessToken, nil, &view))
	assert.Equal(t, []string{"start"}, view.AllowedActions)
	assert.Equal(t, "accepted", card.Status)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/start", worker.AccessToken, nil, &card))
	assert.Equal(t, "in_progress", card.Status)

	code = a.do(http.MethodPost, base+"/complete", worker.AccessToken, map[string]string{"notes": "done"}, &apiErr)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_transition", apiErr.Code)

	// photo evidence
	photoID := a.uploadPhoto(base+"/photos", worker.AccessToken)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/complete", worker.AccessToken, map[string]string{"notes": "done"}, &card))
	assert.Equal(t, "completed", card.Status)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/job-cards/"+card.ID+"/photos/"+photoID, nil)
	req.Header.Set("Authorization", "Bearer "+owner.AccessToken)
	a.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	// notifications
	var feed struct {
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
		Unread           int `json:"unread"`
		PollAfterSeconds int `json:"poll_after_seconds"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/notifications", owner.AccessToken, nil, &feed))
	assert.Equal(t, 30, feed.PollAfterSeconds)
	require.NotEmpty(t, feed.Items)
	assert.Equal(t, "job_card.completed", feed.Items[0].Action)
	assert.Positive(t, feed.Unread)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/api/v1/notifications/read", owner.AccessToken, nil, nil))
	var unread struct{ Unread int }
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/notifications/unread-count", owner.AccessToken, nil, &unread))
	assert.Zero(t, unread.Unread)

	var stats struct {
		JobCardsByStatus map[string]int `json:"job_cards_by_status"`
		ActiveProviders  int            `json:"active_providers"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/company/stats", owner.AccessToken, nil, &stats))
	assert.Equal(t, 1, stats.JobCardsByStatus["completed"])
	assert.Equal(t, 1, stats.ActiveProviders)
}

// pngBytes is a PNG signature plus padding, enough for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func (a *testAPI) uploadPhoto(path, token string) string {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(a.t, mw.WriteField("caption", "after"))
	fw, err := mw.CreateFormFile("photo", "after.png")
	require.NoError(a.t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var ph struct {
		ID      string `json:"id"`
		Caption string `json:"caption"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &ph))
	assert.Equal(a.t, "after", ph.Caption)
	return ph.ID
}
