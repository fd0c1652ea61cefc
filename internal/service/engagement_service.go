package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"
	"github.com/CarlJazper/PSPWEB/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEngagementNotFound  = errors.New("engagement not found")
	ErrSessionNotFound     = errors.New("session not found in schedule")
	ErrScheduleConflict    = errors.New("engagement was modified concurrently, retry the operation")
	ErrSignatureUpload     = errors.New("signature upload failed")
	ErrClientNotFound      = errors.New("client user not found")
	ErrCoachNotFound       = errors.New("coach user not found")
	ErrNotACoach           = errors.New("user found but is not a coach")
	ErrNoActiveEngagement  = errors.New("client has no active engagement")
	ErrInvalidSessionCount = errors.New("sessionsTotal must be at least 1")
)

// AvailInput carries the fields of a client's "avail trainer" purchase.
type AvailInput struct {
	ClientID      primitive.ObjectID
	CoachID       *primitive.ObjectID
	SessionsTotal int
	SessionRate   float64
	PackageLabel  string
	Signature     string // base64 data URI, optional
}

// UpdatePatch carries the generic admin patch. Nil fields are untouched.
type UpdatePatch struct {
	CoachID       *primitive.ObjectID
	SessionsTotal *int
	SessionRate   *float64
	TotalAmount   *float64
	PackageLabel  *string
	Status        *domain.EngagementStatus
}

// UserSummary is the resolved reference shape returned in engagement reads.
type UserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// EngagementDetail is an engagement with its client/coach references
// resolved to user summaries.
type EngagementDetail struct {
	domain.TrainingEngagement
	Client *UserSummary `json:"client,omitempty"`
	Coach  *UserSummary `json:"coach,omitempty"`
}

// --- Service Interface ---
type EngagementService interface {
	Avail(ctx context.Context, input AvailInput) (*domain.TrainingEngagement, error)
	Get(ctx context.Context, id primitive.ObjectID) (*EngagementDetail, error)
	List(ctx context.Context) ([]EngagementDetail, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]EngagementDetail, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]EngagementDetail, error)
	Update(ctx context.Context, id primitive.ObjectID, patch UpdatePatch) (*domain.TrainingEngagement, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	HasActiveEngagement(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainingEngagement, error)

	ScheduleSession(ctx context.Context, engagementID, sessionID primitive.ObjectID, date time.Time, timeOfDay string, trainings []primitive.ObjectID) (*domain.TrainingEngagement, error)
	CancelSession(ctx context.Context, engagementID, sessionID primitive.ObjectID) (*domain.TrainingEngagement, error)
	CompleteSession(ctx context.Context, engagementID, sessionID primitive.ObjectID) (*domain.TrainingEngagement, error)
}

// --- Service Implementation ---

// engagementService implements the EngagementService interface.
type engagementService struct {
	engagementRepo repository.EngagementRepository
	userRepo       repository.UserRepository
	imageStorage   storage.ImageStorage
}

// NewEngagementService creates a new instance of engagementService.
func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	userRepo repository.UserRepository,
	imageStorage storage.ImageStorage,
) EngagementService {
	return &engagementService{
		engagementRepo: engagementRepo,
		userRepo:       userRepo,
		imageStorage:   imageStorage,
	}
}

// === Creation ===

// Avail creates a new engagement for a client's package purchase. The
// schedule is built as SessionsTotal pending sessions; an optional signature
// image is uploaded first, and an upload failure aborts the whole creation.
func (s *engagementService) Avail(ctx context.Context, input AvailInput) (*domain.TrainingEngagement, error) {
	if input.ClientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if input.SessionsTotal < 1 {
		return nil, ErrInvalidSessionCount
	}
	if input.SessionRate < 0 {
		return nil, errors.New("session rate cannot be negative")
	}

	// Verify the purchasing client exists
	if _, err := s.userRepo.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	// Verify the coach assignment, when given
	if input.CoachID != nil && *input.CoachID != primitive.NilObjectID {
		coach, err := s.userRepo.GetByID(ctx, *input.CoachID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCoachNotFound
			}
			return nil, err
		}
		if !coach.IsCoach() {
			return nil, ErrNotACoach
		}
	}

	// Upload the signature before touching the database so a failed upload
	// leaves no partial record behind.
	var signature *domain.Signature
	if input.Signature != "" {
		upload, err := s.imageStorage.UploadImage(ctx, input.Signature)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSignatureUpload, err)
		}
		signature = &domain.Signature{PublicID: upload.PublicID, URL: upload.URL}
	}

	schedule := make([]domain.Session, input.SessionsTotal)
	for i := range schedule {
		schedule[i] = domain.Session{
			ID:        primitive.NewObjectID(),
			Index:     i + 1,
			Status:    domain.SessionPending,
			Trainings: []primitive.ObjectID{},
		}
	}

	engagement := &domain.TrainingEngagement{
		ClientID:      input.ClientID,
		CoachID:       input.CoachID,
		SessionsTotal: input.SessionsTotal,
		SessionRate:   input.SessionRate,
		TotalAmount:   float64(input.SessionsTotal) * input.SessionRate,
		PackageLabel:  input.PackageLabel,
		Status:        domain.EngagementActive,
		Schedule:      schedule,
		Signature:     signature,
	}

	engagementID, err := s.engagementRepo.Create(ctx, engagement)
	if err != nil {
		// The signature is already hosted; clean it up so the failed
		// creation leaves nothing behind.
		if signature != nil {
			_ = s.imageStorage.DeleteImage(ctx, signature.PublicID)
		}
		return nil, err
	}
	engagement.ID = engagementID

	return engagement, nil
}

// === Reads ===

// Get returns one engagement with its client/coach references resolved.
func (s *engagementService) Get(ctx context.Context, id primitive.ObjectID) (*EngagementDetail, error) {
	engagement, err := s.engagementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}

	details, err := s.resolveUsers(ctx, []domain.TrainingEngagement{*engagement})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns all engagements, newest-created first, with references resolved.
func (s *engagementService) List(ctx context.Context) ([]EngagementDetail, error) {
	engagements, err := s.engagementRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, engagements)
}

// ListByCoach returns the engagements assigned to one coach.
func (s *engagementService) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]EngagementDetail, error) {
	engagements, err := s.engagementRepo.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, engagements)
}

// ListByClient returns the services one client has availed.
func (s *engagementService) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]EngagementDetail, error) {
	engagements, err := s.engagementRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, engagements)
}

// resolveUsers fetches every referenced client/coach in one query and joins
// them onto the engagements, populate-style.
func (s *engagementService) resolveUsers(ctx context.Context, engagements []domain.TrainingEngagement) ([]EngagementDetail, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for i := range engagements {
		idSet[engagements[i].ClientID] = struct{}{}
		if engagements[i].CoachID != nil {
			idSet[*engagements[i].CoachID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*UserSummary, len(users))
	for i := range users {
		u := users[i]
		byID[u.ID] = &UserSummary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
	}

	details := make([]EngagementDetail, len(engagements))
	for i := range engagements {
		details[i] = EngagementDetail{TrainingEngagement: engagements[i]}
		details[i].Client = byID[engagements[i].ClientID]
		if engagements[i].CoachID != nil {
			details[i].Coach = byID[*engagements[i].CoachID]
		}
	}
	return details, nil
}

// === Admin updates ===

// Update applies a generic field patch, e.g. reassigning the coach. A coach
// reassignment is validated against the user directory; nothing else is
// cross-checked.
func (s *engagementService) Update(ctx context.Context, id primitive.ObjectID, patch UpdatePatch) (*domain.TrainingEngagement, error) {
	if patch.CoachID != nil && *patch.CoachID != primitive.NilObjectID {
		coach, err := s.userRepo.GetByID(ctx, *patch.CoachID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCoachNotFound
			}
			return nil, err
		}
		if !coach.IsCoach() {
			return nil, ErrNotACoach
		}
	}

	repoPatch := repository.EngagementPatch{
		CoachID:       patch.CoachID,
		SessionsTotal: patch.SessionsTotal,
		SessionRate:   patch.SessionRate,
		TotalAmount:   patch.TotalAmount,
		PackageLabel:  patch.PackageLabel,
		Status:        patch.Status,
	}
	if err := s.engagementRepo.Patch(ctx, id, repoPatch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}

	engagement, err := s.engagementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}
	return engagement, nil
}

// Delete removes the whole engagement record and its hosted signature image.
func (s *engagementService) Delete(ctx context.Context, id primitive.ObjectID) error {
	engagement, err := s.engagementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEngagementNotFound
		}
		return err
	}

	if err := s.engagementRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEngagementNotFound
		}
		return err
	}

	// Best effort; the record is already gone.
	if engagement.Signature != nil {
		_ = s.imageStorage.DeleteImage(ctx, engagement.Signature.PublicID)
	}
	return nil
}

// HasActiveEngagement returns the client's single active engagement, or
// ErrNoActiveEngagement when the client currently has no active training.
func (s *engagementService) HasActiveEngagement(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainingEngagement, error) {
	engagement, err := s.engagementRepo.FindActiveByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveEngagement
		}
		return nil, err
	}
	return engagement, nil
}

// === Session lifecycle ===

// ScheduleSession assigns a date/time (and optional training list) to one
// session, moving it to waiting. Re-scheduling an already waiting session is
// allowed. No availability check is made against other sessions or coaches.
func (s *engagementService) ScheduleSession(ctx context.Context, engagementID, sessionID primitive.ObjectID, date time.Time, timeOfDay string, trainings []primitive.ObjectID) (*domain.TrainingEngagement, error) {
	return s.mutateSession(ctx, engagementID, sessionID, func(session *domain.Session) {
		session.DateAssigned = &date
		session.TimeAssigned = &timeOfDay
		session.Status = domain.SessionWaiting
		if trainings == nil {
			trainings = []primitive.ObjectID{}
		}
		session.Trainings = trainings
	}, false)
}

// CancelSession clears a session back to pending with no date/time. The
// training list and the parent engagement status are left as they are; a
// cancel never reactivates an inactive engagement.
func (s *engagementService) CancelSession(ctx context.Context, engagementID, sessionID primitive.ObjectID) (*domain.TrainingEngagement, error) {
	return s.mutateSession(ctx, engagementID, sessionID, func(session *domain.Session) {
		session.DateAssigned = nil
		session.TimeAssigned = nil
		session.Status = domain.SessionPending
	}, false)
}

// CompleteSession marks a session completed. When that was the last
// non-completed session the parent engagement flips to inactive.
func (s *engagementService) CompleteSession(ctx context.Context, engagementID, sessionID primitive.ObjectID) (*domain.TrainingEngagement, error) {
	return s.mutateSession(ctx, engagementID, sessionID, func(session *domain.Session) {
		session.Status = domain.SessionCompleted
	}, true)
}

// mutateSession loads the engagement, applies the mutation to the matching
// session and writes the schedule back under the revision guard. The parent
// status is recomputed only on completion.
func (s *engagementService) mutateSession(ctx context.Context, engagementID, sessionID primitive.ObjectID, mutate func(*domain.Session), recomputeStatus bool) (*domain.TrainingEngagement, error) {
	engagement, err := s.engagementRepo.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}

	idx := engagement.SessionIndexByID(sessionID)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}

	mutate(&engagement.Schedule[idx])

	if recomputeStatus && engagement.AllSessionsCompleted() {
		engagement.Status = domain.EngagementInactive
	}

	err = s.engagementRepo.UpdateSchedule(ctx, engagement.ID, engagement.Revision, engagement.Schedule, engagement.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrScheduleConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEngagementNotFound
		default:
			return nil, err
		}
	}
	engagement.Revision++

	return engagement, nil
}
