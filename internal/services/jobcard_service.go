package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/events"
	"github.com/baharkarakas/jobcard-backend/internal/jobcard"
	"github.com/baharkarakas/jobcard-backend/internal/metrics"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/storage"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

// photo types accepted as completion evidence, keyed by sniffed content type
var photoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type JobCardService struct {
	store    repo.Store
	blobs    storage.Blobs
	dispatch *Dispatcher
	maxPhoto int64
	now      func() time.Time
	log      *slog.Logger
}

func NewJobCardService(store repo.Store, blobs storage.Blobs, d *Dispatcher, maxPhotoBytes int64, log *slog.Logger) *JobCardService {
	if log == nil {
		log = slog.Default()
	}
	if d == nil {
		d = NewDispatcher(nil, nil, log)
	}
	return &JobCardService{
		store:    store,
		blobs:    blobs,
		dispatch: d,
		maxPhoto: maxPhotoBytes,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

type CreateJobCardInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Location      string     `json:"location"`
	Priority      string     `json:"priority"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
	ProviderID    string     `json:"provider_id"`
}

type UpdateJobCardInput struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	CustomerName  *string    `json:"customer_name"`
	CustomerPhone *string    `json:"customer_phone"`
	Location      *string    `json:"location"`
	Priority      *string    `json:"priority"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
}

func priorityCheck(v string) *validate.ErrField {
	return validate.OneOf("priority", v,
		string(models.PriorityLow), string(models.PriorityNormal), string(models.PriorityHigh), string(models.PriorityUrgent))
}

// assignable checks the provider belongs to companyID and may take work.
func (s *JobCardService) assignable(ctx context.Context, companyID, providerID string) (models.Provider, error) {
	prov, err := s.store.Providers().GetByID(ctx, providerID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && prov.CompanyID != companyID) {
		return models.Provider{}, validate.Errs{{Field: "provider_id", Msg: "unknown provider"}}
	}
	if err != nil {
		return models.Provider{}, err
	}
	ok, err := workable(ctx, s.store, prov)
	if err != nil {
		return models.Provider{}, err
	}
	if !ok {
		return models.Provider{}, validate.Errs{{Field: "provider_id", Msg: "provider is inactive"}}
	}
	return prov, nil
}

func (s *JobCardService) Create(ctx context.Context, p Principal, in CreateJobCardInput) (models.JobCard, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.JobCard{}, err
	}
	if err := validate.Collect(
		validate.Required("title", in.Title),
		validate.MaxLen("title", in.Title, 200),
		validate.MaxLen("description", in.Description, 5000),
		priorityCheck(in.Priority),
	); err != nil {
		return models.JobCard{}, err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return models.JobCard{}, err
	}
	if in.ProviderID != "" {
		if _, err := s.assignable(ctx, p.CompanyID, in.ProviderID); err != nil {
			return models.JobCard{}, err
		}
	}
	prio := models.Priority(in.Priority)
	if prio == "" {
		prio = models.PriorityNormal
	}

	var out models.JobCard
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		var err error
		out, err = tx.JobCards().Create(ctx, models.JobCard{
			CompanyID:     p.CompanyID,
			ProviderID:    strPtr(in.ProviderID),
			Title:         strings.TrimSpace(in.Title),
			Description:   strings.TrimSpace(in.Description),
			CustomerName:  strings.TrimSpace(in.CustomerName),
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			Location:      strings.TrimSpace(in.Location),
			Priority:      prio,
			Status:        models.JobPending,
			ScheduledFor:  in.ScheduledFor,
			CreatedBy:     p.UserID,
		})
		if err != nil {
			return err
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &out.CompanyID,
			ProviderID:  out.ProviderID,
			JobCardID:   &out.ID,
			ActorUserID: p.actorID(),
			Action:      "job_card.created",
			Message:     fmt.Sprintf("New job card: %s", out.Title),
			Details:     map[string]any{"priority": string(out.Priority)},
		})
	})
	if err != nil {
		return models.JobCard{}, translate(err)
	}

	metrics.JobCardsCreated.Inc()
	s.dispatch.Emit(cardEvent("job_card.created", out, p))
	return out, nil
}

// scope narrows a filter to what p may see.
func (s *JobCardService) scope(ctx context.Context, p Principal, f repo.JobCardFilter) (repo.JobCardFilter, error) {
	switch p.Role {
	case models.RoleAdmin:
	case models.RoleCompany:
		f.CompanyID = p.CompanyID
	case models.RoleProvider:
		prov, err := providerFor(ctx, s.store, p)
		if err != nil {
			return f, err
		}
		f.CompanyID = prov.CompanyID
		f.ProviderID = prov.ID
	default:
		return f, ErrForbidden
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, validate.Errs{{Field: "status", Msg: "unknown status"}}
	}
	return f, nil
}

func (s *JobCardService) List(ctx context.Context, p Principal, f repo.JobCardFilter) ([]models.JobCard, error) {
	f, err := s.scope(ctx, p, f)
	if err != nil {
		return nil, err
	}
	out, err := s.store.JobCards().List(ctx, f)
	return out, translate(err)
}

// visible loads a card; cards outside the caller's scope read as not found.
// The provider id is returned for provider callers.
func (s *JobCardService) visible(ctx context.Context, p Principal, id string) (models.JobCard, string, error) {
	card, err := s.store.JobCards().GetByID(ctx, id)
	if err != nil {
		return models.JobCard{}, "", translate(err)
	}
	switch p.Role {
	case models.RoleAdmin:
		return card, "", nil
	case models.RoleCompany:
		if card.CompanyID == p.CompanyID {
			return card, "", nil
		}
	case models.RoleProvider:
		prov, err := providerFor(ctx, s.store, p)
		if err != nil {
			return models.JobCard{}, "", err
		}
		if card.AssignedTo(prov.ID) {
			return card, prov.ID, nil
		}
	}
	return models.JobCard{}, "", fmt.Errorf("%w: job card %s", ErrNotFound, id)
}

func (s *JobCardService) Get(ctx context.Context, p Principal, id string) (models.JobCard, error) {
	card, _, err := s.visible(ctx, p, id)
	return card, err
}

// Update edits details while the card has not been taken on yet.
func (s *JobCardService) Update(ctx context.Context, p Principal, id string, in UpdateJobCardInput) (models.JobCard, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.JobCard{}, err
	}
	card, _, err := s.visible(ctx, p, id)
	if err != nil {
		return models.JobCard{}, err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return models.JobCard{}, err
	}
	if card.Status != models.JobPending && card.Status != models.JobDeclined {
		return models.JobCard{}, fmt.Errorf("%w: a %s job card cannot be edited", ErrInvalidTransition, card.Status)
	}

	next := card
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&next.Title, in.Title)
	set(&next.Description, in.Description)
	set(&next.CustomerName, in.CustomerName)
	set(&next.CustomerPhone, in.CustomerPhone)
	set(&next.Location, in.Location)
	if in.Priority != nil {
		next.Priority = models.Priority(*in.Priority)
	}
	if in.ScheduledFor != nil {
		next.ScheduledFor = in.ScheduledFor
	}
	if err := validate.Collect(
		validate.Required("title", next.Title),
		validate.MaxLen("title", next.Title, 200),
		validate.MaxLen("description", next.Description, 5000),
		validate.If(!next.Priority.Valid(), "priority", "unknown priority"),
	); err != nil {
		return models.JobCard{}, err
	}

	var out models.JobCard
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		var err error
		out, err = tx.JobCards().Update(ctx, next, card.Status)
		if err != nil {
			return err
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &out.CompanyID,
			ProviderID:  out.ProviderID,
			JobCardID:   &out.ID,
			ActorUserID: p.actorID(),
			Action:      "job_card.updated",
			Message:     fmt.Sprintf("Job card updated: %s", out.Title),
		})
	})
	return out, translate(err)
}

// Delete removes pending or cancelled cards together with their photos.
func (s *JobCardService) Delete(ctx context.Context, p Principal, id string) error {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return err
	}
	card, _, err := s.visible(ctx, p, id)
	if err != nil {
		return err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return err
	}
	if card.Status != models.JobPending && card.Status != models.JobCancelled {
		return fmt.Errorf("%w: a %s job card cannot be deleted", ErrInvalidTransition, card.Status)
	}
	photos, err := s.store.JobPhotos().ListByJobCard(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		if err := tx.JobCards().Delete(ctx, id); err != nil {
			return err
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &card.CompanyID,
			ProviderID:  card.ProviderID,
			ActorUserID: p.actorID(),
			Action:      "job_card.deleted",
			Message:     fmt.Sprintf("Job card deleted: %s", card.Title),
			Details:     map[string]any{"job_card_id": card.ID},
		})
	})
	if err != nil {
		return translate(err)
	}

	s.dispatch.Go(func() {
		for _, ph := range photos {
			if err := s.blobs.Delete(context.Background(), ph.ObjectKey); err != nil {
				s.log.Warn("photo cleanup failed", "key", ph.ObjectKey, "err", err)
			}
		}
	})
	s.dispatch.Emit(cardEvent("job_card.deleted", card, p))
	return nil
}

// Transition applies a lifecycle action on behalf of p.
func (s *JobCardService) Transition(ctx context.Context, p Principal, id string, action jobcard.Action, in jobcard.Input) (models.JobCard, error) {
	card, providerID, err := s.visible(ctx, p, id)
	if err != nil {
		return models.JobCard{}, err
	}
	if p.Role != models.RoleAdmin {
		if _, err := requireApproved(ctx, s.store, card.CompanyID); err != nil {
			return models.JobCard{}, err
		}
	}

	switch action {
	case jobcard.ActionAssign:
		if in.NewProviderID != "" {
			if _, err := s.assignable(ctx, card.CompanyID, in.NewProviderID); err != nil {
				return models.JobCard{}, err
			}
		}
	case jobcard.ActionComplete:
		n, err := s.store.JobPhotos().CountByJobCard(ctx, card.ID)
		if err != nil {
			return models.JobCard{}, err
		}
		in.PhotoCount = n
	}

	actor := jobcard.Actor{UserID: p.UserID, Role: p.Role, ProviderID: providerID}
	next, err := jobcard.Apply(card, action, actor, in, s.now())
	if err != nil {
		return models.JobCard{}, translate(err)
	}

	var out models.JobCard
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		var err error
		out, err = tx.JobCards().Update(ctx, next, card.Status)
		if err != nil {
			return err
		}
		return record(ctx, tx, transitionLog(card, out, action, p, in))
	})
	if err != nil {
		return models.JobCard{}, translate(err)
	}

	metrics.JobCardTransitions.WithLabelValues(string(action), string(out.Status)).Inc()
	s.log.Info("job card transition", "job_card_id", out.ID, "action", action, "from", card.Status, "to", out.Status, "by", p.UserID)

	e := cardEvent(jobcard.EventName(action), out, p)
	e.Data = map[string]any{"from": string(card.Status), "to": string(out.Status)}
	s.dispatch.Emit(e)
	return out, nil
}

func transitionLog(before, after models.JobCard, a jobcard.Action, p Principal, in jobcard.Input) models.ActivityLog {
	l := models.ActivityLog{
		CompanyID:   &after.CompanyID,
		ProviderID:  after.ProviderID,
		JobCardID:   &after.ID,
		ActorUserID: p.actorID(),
		Action:      jobcard.EventName(a),
		Details:     map[string]any{"from": string(before.Status), "to": string(after.Status)},
	}
	switch a {
	case jobcard.ActionAccept:
		l.Message = fmt.Sprintf("Job card accepted: %s", after.Title)
	case jobcard.ActionDecline:
		l.Message = fmt.Sprintf("Job card declined: %s (%s)", after.Title, after.DeclineReason)
		l.Details["reason"] = after.DeclineReason
	case jobcard.ActionStart:
		l.Message = fmt.Sprintf("Work started: %s", after.Title)
	case jobcard.ActionComplete:
		l.Message = fmt.Sprintf("Job card completed: %s", after.Title)
		l.Details["photos"] = in.PhotoCount
	case jobcard.ActionAssign:
		l.Message = fmt.Sprintf("Job card assigned: %s", after.Title)
		if before.ProviderID != nil {
			l.Details["previous_provider_id"] = *before.ProviderID
		}
	case jobcard.ActionCancel:
		l.Message = fmt.Sprintf("Job card cancelled: %s", after.Title)
		// the provider that lost the job still gets to see it
		if l.ProviderID == nil {
			l.ProviderID = before.ProviderID
		}
	}
	return l
}

func (s *JobCardService) Accept(ctx context.Context, p Principal, id string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionAccept, jobcard.Input{})
}

func (s *JobCardService) Decline(ctx context.Context, p Principal, id, reason string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionDecline, jobcard.Input{Reason: reason})
}

func (s *JobCardService) Start(ctx context.Context, p Principal, id string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionStart, jobcard.Input{})
}

func (s *JobCardService) Complete(ctx context.Context, p Principal, id, notes string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionComplete, jobcard.Input{Notes: notes})
}

func (s *JobCardService) Assign(ctx context.Context, p Principal, id, providerID string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionAssign, jobcard.Input{NewProviderID: providerID})
}

func (s *JobCardService) Cancel(ctx context.Context, p Principal, id string) (models.JobCard, error) {
	return s.Transition(ctx, p, id, jobcard.ActionCancel, jobcard.Input{})
}

// ---------- photos ----------

type UploadPhotoInput struct {
	Body    io.Reader
	Caption string
}

// UploadPhoto stores evidence from the assigned provider while work is underway.
func (s *JobCardService) UploadPhoto(ctx context.Context, p Principal, id string, in UploadPhotoInput) (models.JobPhoto, error) {
	if err := requireRole(p, models.RoleProvider); err != nil {
		return models.JobPhoto{}, err
	}
	card, providerID, err := s.visible(ctx, p, id)
	if err != nil {
		return models.JobPhoto{}, err
	}
	if card.Status != models.JobAccepted && card.Status != models.JobInProgress {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		return models.JobPhoto{}, fmt.Errorf("%w: photos can only be added to accepted or in-progress job cards", ErrInvalidTransition)
	}
	if err := validate.Collect(validate.MaxLen("caption", in.Caption, 500)); err != nil {
		return models.JobPhoto{}, err
	}

	br := bufio.NewReaderSize(in.Body, 512)
	head, _ := br.Peek(512)
	ctype := http.DetectContentType(head)
	ext, ok := photoTypes[ctype]
	if !ok {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		return models.JobPhoto{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, ctype)
	}

	photoID := uuid.NewString()
	key := fmt.Sprintf("job-cards/%s/%s%s", card.ID, photoID, ext)
	size, err := s.blobs.Put(ctx, key, br, s.maxPhoto)
	if errors.Is(err, storage.ErrTooLarge) {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		return models.JobPhoto{}, ErrTooLarge
	}
	if err != nil {
		metrics.PhotoUploads.WithLabelValues("error").Inc()
		return models.JobPhoto{}, err
	}

	var out models.JobPhoto
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		var err error
		out, err = tx.JobPhotos().Create(ctx, models.JobPhoto{
			ID:          photoID,
			JobCardID:   card.ID,
			UploadedBy:  p.UserID,
			ObjectKey:   key,
			ContentType: ctype,
			SizeBytes:   size,
			Caption:     strings.TrimSpace(in.Caption),
		})
		if err != nil {
			return err
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &card.CompanyID,
			ProviderID:  &providerID,
			JobCardID:   &card.ID,
			ActorUserID: p.actorID(),
			Action:      "job_card.photo_added",
			Message:     fmt.Sprintf("Photo added to %s", card.Title),
			Details:     map[string]any{"photo_id": photoID},
		})
	})
	if err != nil {
		_ = s.blobs.Delete(context.Background(), key)
		metrics.PhotoUploads.WithLabelValues("error").Inc()
		return models.JobPhoto{}, translate(err)
	}
	metrics.PhotoUploads.WithLabelValues("ok").Inc()
	return out, nil
}

func (s *JobCardService) ListPhotos(ctx context.Context, p Principal, id string) ([]models.JobPhoto, error) {
	if _, _, err := s.visible(ctx, p, id); err != nil {
		return nil, err
	}
	out, err := s.store.JobPhotos().ListByJobCard(ctx, id)
	return out, translate(err)
}

// OpenPhoto returns the blob; the caller closes it.
func (s *JobCardService) OpenPhoto(ctx context.Context, p Principal, id, photoID string) (models.JobPhoto, io.ReadCloser, error) {
	if _, _, err := s.visible(ctx, p, id); err != nil {
		return models.JobPhoto{}, nil, err
	}
	ph, err := s.store.JobPhotos().GetByID(ctx, photoID)
	if err != nil {
		return models.JobPhoto{}, nil, translate(err)
	}
	if ph.JobCardID != id {
		return models.JobPhoto{}, nil, ErrNotFound
	}
	rc, err := s.blobs.Open(ctx, ph.ObjectKey)
	if errors.Is(err, storage.ErrNotFound) {
		return models.JobPhoto{}, nil, fmt.Errorf("%w: photo content missing", ErrNotFound)
	}
	if err != nil {
		return models.JobPhoto{}, nil, err
	}
	return ph, rc, nil
}

func cardEvent(name string, c models.JobCard, p Principal) events.Event {
	e := events.Event{
		Name:      name,
		JobCardID: c.ID,
		CompanyID: c.CompanyID,
		ActorID:   p.UserID,
	}
	if c.ProviderID != nil {
		e.ProviderID = *c.ProviderID
	}
	return e
}
