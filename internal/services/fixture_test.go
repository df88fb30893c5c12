package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/events"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	"github.com/baharkarakas/jobcard-backend/internal/repository/memory"
	"github.com/baharkarakas/jobcard-backend/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	blobs *storage.Local
	pub   *recordingPublisher

	auth      *AuthService
	companies *CompanyService
	users     *UserService
	providers *ProviderService
	jobs      *JobCardService
	notes     *NotificationService
	dash      *DashboardService

	admin Principal
}

const testPassword = "s3cret-pass"

// pngBytes is enough of a PNG header for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, nil, log)
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test", 15*time.Minute, time.Hour)

	f := &fixture{
		t:         t,
		ctx:       ctx,
		store:     store,
		blobs:     blobs,
		pub:       pub,
		auth:      NewAuthService(store, tm, log),
		companies: NewCompanyService(store, log),
		users:     NewUserService(store),
		providers: NewProviderService(store),
		jobs:      NewJobCardService(store, blobs, d, 1<<20, log),
		notes:     NewNotificationService(store, log),
		dash:      NewDashboardService(store),
	}

	created, err := f.auth.EnsureAdmin(ctx, "admin@jobcards.io", testPassword)
	require.NoError(t, err)
	require.True(t, created)
	u, err := store.Users().GetByEmail(ctx, "admin@jobcards.io")
	require.NoError(t, err)
	f.admin = Principal{UserID: u.ID, Role: models.RoleAdmin}
	return f
}

// pendingCompany registers a company and returns its owner's principal.
func (f *fixture) pendingCompany(name, email string) Principal {
	f.t.Helper()
	prof, err := f.auth.RegisterCompany(f.ctx, RegisterCompanyInput{
		CompanyName:  name,
		CompanyEmail: "office@" + email,
		OwnerName:    name + " Owner",
		OwnerEmail:   "owner@" + email,
		Password:     testPassword,
	})
	require.NoError(f.t, err)
	return Principal{UserID: prof.User.ID, Role: models.RoleCompany, CompanyID: prof.Company.ID}
}

func (f *fixture) approvedCompany(name, email string) Principal {
	f.t.Helper()
	p := f.pendingCompany(name, email)
	_, err := f.companies.Approve(f.ctx, f.admin, p.CompanyID)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) addProvider(company Principal, name, email string) (models.Provider, Principal) {
	f.t.Helper()
	prov, err := f.providers.Create(f.ctx, company, CreateProviderInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	require.NoError(f.t, err)
	return prov, Principal{UserID: prov.UserID, Role: models.RoleProvider, CompanyID: prov.CompanyID}
}

func (f *fixture) newCard(company Principal, providerID string) models.JobCard {
	f.t.Helper()
	card, err := f.jobs.Create(f.ctx, company, CreateJobCardInput{
		Title:      "Fix boiler",
		Location:   "Kadıköy",
		ProviderID: providerID,
	})
	require.NoError(f.t, err)
	return card
}

func (f *fixture) uploadPNG(provider Principal, cardID string) models.JobPhoto {
	f.t.Helper()
	ph, err := f.jobs.UploadPhoto(f.ctx, provider, cardID, UploadPhotoInput{Body: bytes.NewReader(pngBytes)})
	require.NoError(f.t, err)
	return ph
}
