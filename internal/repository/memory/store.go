// Package memory is a process-local Store used by STORE_DRIVER=memory and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type state struct {
	users     map[string]models.User
	companies map[string]models.Company
	providers map[string]models.Provider
	jobCards  map[string]models.JobCard
	photos    map[string]models.JobPhoto
	logs      []models.ActivityLog
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[string]models.User, len(s.users)),
		companies: make(map[string]models.Company, len(s.companies)),
		providers: make(map[string]models.Provider, len(s.providers)),
		jobCards:  make(map[string]models.JobCard, len(s.jobCards)),
		photos:    make(map[string]models.JobPhoto, len(s.photos)),
		logs:      append([]models.ActivityLog(nil), s.logs...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.providers {
		c.providers[k] = v
	}
	for k, v := range s.jobCards {
		c.jobCards[k] = v
	}
	for k, v := range s.photos {
		c.photos[k] = v
	}
	return c
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			users:     map[string]models.User{},
			companies: map[string]models.Company{},
			providers: map[string]models.Provider{},
			jobCards:  map[string]models.JobCard{},
			photos:    map[string]models.JobPhoto{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Users() repo.Users { return usersRepo{s} }
func (s *Store) Companies() repo.Companies { return companiesRepo{s} }
func (s *Store) Providers() repo.Providers { return providersRepo{s} }
func (s *Store) JobCards() repo.JobCards { return jobCardsRepo{s} }
func (s *Store) JobPhotos() repo.JobPhotos { return jobPhotosRepo{s} }
func (s *Store) ActivityLogs() repo.ActivityLogs { return activityLogsRepo{s} }

// WithTx serialises transactions and restores a snapshot when fn fails.
// Non-transactional writes that interleave with a failing fn are lost on restore.
func (s *Store) WithTx(ctx context.Context, fn func(repo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.st.clone()
	s.mu.RUnlock()

	if err := fn(txView{s}); err != nil {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// txView is the Store handed to WithTx callbacks; nested WithTx joins the outer one.
type txView struct{ *Store }

func (v txView) WithTx(_ context.Context, fn func(repo.Store) error) error { return fn(v) }

var fold = cases.Fold()

func contains(haystack, needle string) bool {
	return strings.Contains(fold.String(haystack), fold.String(needle))
}

func matchAny(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if contains(f, q) {
			return true
		}
	}
	return false
}

func paginate[T any](in []T, p repo.Page) []T {
	p = p.Normalize()
	if p.Offset >= len(in) {
		return nil
	}
	end := p.Offset + p.Limit
	if end > len(in) {
		end = len(in)
	}
	return in[p.Offset:end]
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = models.NormalizeEmail(u.Email)
	for _, x := range r.s.st.users {
		if x.Email == u.Email {
			return models.User{}, repo.ErrConflict
		}
	}
	u.ID = newID(u.ID)
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.NotificationsSeenAt.IsZero() {
		u.NotificationsSeenAt = time.Unix(0, 0).UTC()
	}
	r.s.st.users[u.ID] = u
	return u, nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = models.NormalizeEmail(email)
	for _, u := range r.s.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r usersRepo) List(_ context.Context, f repo.UserFilter) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.User
	for _, u := range r.s.st.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if !matchAny(f.Query, u.Email, u.FullName) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return paginate(out, f.Page), nil
}

func (r usersRepo) update(id string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	fn(&u)
	r.s.st.users[id] = u
	return nil
}

func (r usersRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(u *models.User) {
		u.IsActive = active
		u.UpdatedAt = r.s.now()
	})
}

func (r usersRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.UpdatedAt = r.s.now()
	})
}

func (r usersRepo) MarkNotificationsSeen(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) { u.NotificationsSeenAt = at })
}

func (r usersRepo) CountByRole(_ context.Context) (map[models.Role]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[models.Role]int{}
	for _, u := range r.s.st.users {
		out[u.Role]++
	}
	return out, nil
}

// ---------- companies ----------

type companiesRepo struct{ s *Store }

func (r companiesRepo) Create(_ context.Context, c models.Company) (models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID(c.ID)
	if _, ok := r.s.st.companies[c.ID]; ok {
		return models.Company{}, repo.ErrConflict
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.st.companies[c.ID] = c
	return c, nil
}

func (r companiesRepo) GetByID(_ context.Context, id string) (models.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.st.companies[id]
	if !ok {
		return models.Company{}, repo.ErrNotFound
	}
	return c, nil
}

func (r companiesRepo) List(_ context.Context, f repo.CompanyFilter) ([]models.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Company
	for _, c := range r.s.st.companies {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !matchAny(f.Query, c.Name, c.Email) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return paginate(out, f.Page), nil
}

func (r companiesRepo) UpdateStatus(_ context.Context, id string, from, to models.CompanyStatus, reason string) (models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.companies[id]
	if !ok || c.Status != from {
		return models.Company{}, repo.ErrStale
	}
	c.Status = to
	c.StatusReason = reason
	c.UpdatedAt = r.s.now()
	r.s.st.companies[id] = c
	return c, nil
}

func (r companiesRepo) CountByStatus(_ context.Context) (map[models.CompanyStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[models.CompanyStatus]int{}
	for _, c := range r.s.st.companies {
		out[c.Status]++
	}
	return out, nil
}

// ---------- providers ----------

type providersRepo struct{ s *Store }

func (r providersRepo) withEmail(p models.Provider) models.Provider {
	if u, ok := r.s.st.users[p.UserID]; ok {
		p.Email = u.Email
	}
	return p
}

func (r providersRepo) Create(_ context.Context, p models.Provider) (models.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.st.providers {
		if x.UserID == p.UserID {
			return models.Provider{}, repo.ErrConflict
		}
	}
	p.ID = newID(p.ID)
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Email = ""
	r.s.st.providers[p.ID] = p
	return r.withEmail(p), nil
}

func (r providersRepo) GetByID(_ context.Context, id string) (models.Provider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.providers[id]
	if !ok {
		return models.Provider{}, repo.ErrNotFound
	}
	return r.withEmail(p), nil
}

func (r providersRepo) GetByUserID(_ context.Context, userID string) (models.Provider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.st.providers {
		if p.UserID == userID {
			return r.withEmail(p), nil
		}
	}
	return models.Provider{}, repo.ErrNotFound
}

func (r providersRepo) List(_ context.Context, f repo.ProviderFilter) ([]models.Provider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Provider
	for _, p := range r.s.st.providers {
		if f.CompanyID != "" && p.CompanyID != f.CompanyID {
			continue
		}
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		p = r.withEmail(p)
		if !matchAny(f.Query, p.Name, p.Specialty, p.Email) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f.Page), nil
}

func (r providersRepo) Update(_ context.Context, p models.Provider) (models.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.providers[p.ID]
	if !ok {
		return models.Provider{}, repo.ErrNotFound
	}
	cur.Name, cur.Phone, cur.Specialty = p.Name, p.Phone, p.Specialty
	cur.UpdatedAt = r.s.now()
	r.s.st.providers[p.ID] = cur
	return r.withEmail(cur), nil
}

func (r providersRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.providers[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.IsActive = active
	p.UpdatedAt = r.s.now()
	r.s.st.providers[id] = p
	return nil
}

func (r providersRepo) CountByActive(_ context.Context, companyID string) (map[bool]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[bool]int{}
	for _, p := range r.s.st.providers {
		if p.CompanyID == companyID {
			out[p.IsActive]++
		}
	}
	return out, nil
}

// ---------- job cards ----------

type jobCardsRepo struct{ s *Store }

func (r jobCardsRepo) Create(_ context.Context, j models.JobCard) (models.JobCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j.ID = newID(j.ID)
	if _, ok := r.s.st.jobCards[j.ID]; ok {
		return models.JobCard{}, repo.ErrConflict
	}
	now := r.s.now()
	j.CreatedAt, j.UpdatedAt = now, now
	r.s.st.jobCards[j.ID] = j
	return j, nil
}

func (r jobCardsRepo) GetByID(_ context.Context, id string) (models.JobCard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.st.jobCards[id]
	if !ok {
		return models.JobCard{}, repo.ErrNotFound
	}
	return j, nil
}

func (r jobCardsRepo) List(_ context.Context, f repo.JobCardFilter) ([]models.JobCard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.JobCard
	for _, j := range r.s.st.jobCards {
		if f.CompanyID != "" && j.CompanyID != f.CompanyID {
			continue
		}
		if f.ProviderID != "" && !j.AssignedTo(f.ProviderID) {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if !matchAny(f.Query, j.Title, j.CustomerName, j.Location, j.Description) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return newer(out[i].CreatedAt, out[k].CreatedAt, out[i].ID, out[k].ID) })
	return paginate(out, f.Page), nil
}

func (r jobCardsRepo) Update(_ context.Context, j models.JobCard, expect models.JobStatus) (models.JobCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.jobCards[j.ID]
	if !ok || cur.Status != expect {
		return models.JobCard{}, repo.ErrStale
	}
	j.CompanyID, j.CreatedBy, j.CreatedAt = cur.CompanyID, cur.CreatedBy, cur.CreatedAt
	j.UpdatedAt = r.s.now()
	r.s.st.jobCards[j.ID] = j
	return j, nil
}

func (r jobCardsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.jobCards[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.jobCards, id)
	for pid, p := range r.s.st.photos {
		if p.JobCardID == id {
			delete(r.s.st.photos, pid)
		}
	}
	return nil
}

func (r jobCardsRepo) CountByStatus(_ context.Context, companyID string) (map[models.JobStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[models.JobStatus]int{}
	for _, j := range r.s.st.jobCards {
		if companyID != "" && j.CompanyID != companyID {
			continue
		}
		out[j.Status]++
	}
	return out, nil
}

// ---------- photos ----------

type jobPhotosRepo struct{ s *Store }

func (r jobPhotosRepo) Create(_ context.Context, p models.JobPhoto) (models.JobPhoto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.jobCards[p.JobCardID]; !ok {
		return models.JobPhoto{}, repo.ErrNotFound
	}
	for _, x := range r.s.st.photos {
		if x.ObjectKey == p.ObjectKey {
			return models.JobPhoto{}, repo.ErrConflict
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt = r.s.now()
	r.s.st.photos[p.ID] = p
	return p, nil
}

func (r jobPhotosRepo) GetByID(_ context.Context, id string) (models.JobPhoto, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.photos[id]
	if !ok {
		return models.JobPhoto{}, repo.ErrNotFound
	}
	return p, nil
}

func (r jobPhotosRepo) ListByJobCard(_ context.Context, jobCardID string) ([]models.JobPhoto, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.JobPhoto
	for _, p := range r.s.st.photos {
		if p.JobCardID == jobCardID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID) })
	return out, nil
}

func (r jobPhotosRepo) CountByJobCard(ctx context.Context, jobCardID string) (int, error) {
	ps, err := r.ListByJobCard(ctx, jobCardID)
	return len(ps), err
}

// ---------- activity ----------

type activityLogsRepo struct{ s *Store }

func (r activityLogsRepo) Create(_ context.Context, l models.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = newID(l.ID)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.s.now()
	}
	r.s.st.logs = append(r.s.st.logs, l)
	return nil
}

func visible(l models.ActivityLog, f repo.ActivityFilter) bool {
	switch {
	case f.ProviderID != "":
		if l.ProviderID == nil || *l.ProviderID != f.ProviderID {
			return false
		}
	case f.CompanyID != "":
		if l.CompanyID == nil || *l.CompanyID != f.CompanyID {
			return false
		}
	}
	return f.Since.IsZero() || l.CreatedAt.After(f.Since)
}

func (r activityLogsRepo) List(_ context.Context, f repo.ActivityFilter) ([]models.ActivityLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.ActivityLog
	// newest first; logs are appended in time order
	for i := len(r.s.st.logs) - 1; i >= 0; i-- {
		if visible(r.s.st.logs[i], f) {
			out = append(out, r.s.st.logs[i])
		}
	}
	return paginate(out, repo.Page{Limit: f.Limit}), nil
}

func (r activityLogsRepo) CountSince(_ context.Context, f repo.ActivityFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, l := range r.s.st.logs {
		if visible(l, f) {
			n++
		}
	}
	return n, nil
}

func newer(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}
