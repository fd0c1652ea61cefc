package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"
	"github.com/CarlJazper/PSPWEB/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetGatewayCustomerID(ctx context.Context, id primitive.ObjectID, customerID string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GatewayCustomerID = customerID
	return nil
}

// fakeEngagementRepo stores engagements in memory and enforces the same
// revision-guarded schedule write as the Mongo implementation.
type fakeEngagementRepo struct {
	engagements map[primitive.ObjectID]*domain.TrainingEngagement
	createErr   error
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{engagements: make(map[primitive.ObjectID]*domain.TrainingEngagement)}
}

func (r *fakeEngagementRepo) Create(ctx context.Context, engagement *domain.TrainingEngagement) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *engagement
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.engagements[id] = &stored
	return id, nil
}

func (r *fakeEngagementRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingEngagement, error) {
	e, ok := r.engagements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *e
	copy.Schedule = append([]domain.Session(nil), e.Schedule...)
	return &copy, nil
}

func (r *fakeEngagementRepo) List(ctx context.Context) ([]domain.TrainingEngagement, error) {
	var out []domain.TrainingEngagement
	for _, e := range r.engagements {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEngagementRepo) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingEngagement, error) {
	var out []domain.TrainingEngagement
	for _, e := range r.engagements {
		if e.CoachID != nil && *e.CoachID == coachID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEngagementRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingEngagement, error) {
	var out []domain.TrainingEngagement
	for _, e := range r.engagements {
		if e.ClientID == clientID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEngagementRepo) Patch(ctx context.Context, id primitive.ObjectID, patch repository.EngagementPatch) error {
	e, ok := r.engagements[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.CoachID != nil {
		e.CoachID = patch.CoachID
	}
	if patch.SessionsTotal != nil {
		e.SessionsTotal = *patch.SessionsTotal
	}
	if patch.SessionRate != nil {
		e.SessionRate = *patch.SessionRate
	}
	if patch.TotalAmount != nil {
		e.TotalAmount = *patch.TotalAmount
	}
	if patch.PackageLabel != nil {
		e.PackageLabel = *patch.PackageLabel
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	return nil
}

func (r *fakeEngagementRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.engagements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.engagements, id)
	return nil
}

func (r *fakeEngagementRepo) FindActiveByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainingEngagement, error) {
	for _, e := range r.engagements {
		if e.ClientID == clientID && e.Status == domain.EngagementActive {
			copy := *e
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEngagementRepo) UpdateSchedule(ctx context.Context, id primitive.ObjectID, revision int64, schedule []domain.Session, status domain.EngagementStatus) error {
	e, ok := r.engagements[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Revision != revision {
		return repository.ErrConflict
	}
	e.Schedule = append([]domain.Session(nil), schedule...)
	e.Status = status
	e.Revision++
	return nil
}

func (r *fakeEngagementRepo) SalesTotal(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	for _, e := range r.engagements {
		if !e.CreatedAt.Before(since) {
			total += e.TotalAmount
		}
	}
	return total, nil
}

// fakeImageStorage counts uploads/deletes and can be told to fail.
type fakeImageStorage struct {
	uploadErr error
	uploads   int
	deleted   []string
}

func (s *fakeImageStorage) UploadImage(ctx context.Context, data string) (*storage.ImageUpload, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploads++
	return &storage.ImageUpload{PublicID: "sig/test", URL: "https://img.example/sig/test.png"}, nil
}

func (s *fakeImageStorage) DeleteImage(ctx context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

// --- Test helpers ---

func testClient() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Client", Email: "client@example.com", Role: domain.RoleClient}
}

func testCoach() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Coach", Email: "coach@example.com", Role: domain.RoleCoach}
}

func availEngagement(t *testing.T, svc EngagementService, client *domain.User, coach *domain.User, sessions int, rate float64) *domain.TrainingEngagement {
	t.Helper()
	input := AvailInput{ClientID: client.ID, SessionsTotal: sessions, SessionRate: rate, PackageLabel: "Starter"}
	if coach != nil {
		input.CoachID = &coach.ID
	}
	engagement, err := svc.Avail(context.Background(), input)
	if err != nil {
		t.Fatalf("Avail: %v", err)
	}
	return engagement
}

// --- Creation ---

func TestAvailBuildsPendingSchedule(t *testing.T) {
	client, coach := testClient(), testCoach()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client, coach), &fakeImageStorage{})

	engagement := availEngagement(t, svc, client, coach, 5, 500)

	if len(engagement.Schedule) != 5 {
		t.Fatalf("schedule length = %d, want 5", len(engagement.Schedule))
	}
	for i, session := range engagement.Schedule {
		if session.Status != domain.SessionPending {
			t.Errorf("session %d status = %q, want pending", i, session.Status)
		}
		if session.Index != i+1 {
			t.Errorf("session %d index = %d, want %d", i, session.Index, i+1)
		}
		if session.DateAssigned != nil || session.TimeAssigned != nil {
			t.Errorf("session %d has assigned date/time on creation", i)
		}
		if session.ID.IsZero() {
			t.Errorf("session %d has no ID", i)
		}
	}
	if engagement.TotalAmount != 2500 {
		t.Errorf("totalAmount = %v, want 2500", engagement.TotalAmount)
	}
	if engagement.Status != domain.EngagementActive {
		t.Errorf("status = %q, want active", engagement.Status)
	}
}

func TestAvailRejectsInvalidInput(t *testing.T) {
	client := testClient()
	svc := NewEngagementService(newFakeEngagementRepo(), newFakeUserRepo(client), &fakeImageStorage{})

	_, err := svc.Avail(context.Background(), AvailInput{ClientID: client.ID, SessionsTotal: 0, SessionRate: 500})
	if !errors.Is(err, ErrInvalidSessionCount) {
		t.Errorf("zero sessions: err = %v, want ErrInvalidSessionCount", err)
	}

	_, err = svc.Avail(context.Background(), AvailInput{ClientID: primitive.NewObjectID(), SessionsTotal: 3})
	if !errors.Is(err, ErrClientNotFound) {
		t.Errorf("unknown client: err = %v, want ErrClientNotFound", err)
	}
}

func TestAvailRejectsNonCoachAssignment(t *testing.T) {
	client, other := testClient(), testClient()
	svc := NewEngagementService(newFakeEngagementRepo(), newFakeUserRepo(client, other), &fakeImageStorage{})

	_, err := svc.Avail(context.Background(), AvailInput{ClientID: client.ID, CoachID: &other.ID, SessionsTotal: 3})
	if !errors.Is(err, ErrNotACoach) {
		t.Errorf("err = %v, want ErrNotACoach", err)
	}
}

func TestAvailSignatureUploadFailureAbortsCreation(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	images := &fakeImageStorage{uploadErr: errors.New("host unreachable")}
	svc := NewEngagementService(repo, newFakeUserRepo(client), images)

	_, err := svc.Avail(context.Background(), AvailInput{
		ClientID:      client.ID,
		SessionsTotal: 3,
		SessionRate:   500,
		Signature:     "data:image/png;base64,AAAA",
	})
	if !errors.Is(err, ErrSignatureUpload) {
		t.Fatalf("err = %v, want ErrSignatureUpload", err)
	}
	if len(repo.engagements) != 0 {
		t.Errorf("engagement was persisted despite upload failure")
	}
}

func TestAvailCleansUpSignatureOnCreateFailure(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	repo.createErr = errors.New("write refused")
	images := &fakeImageStorage{}
	svc := NewEngagementService(repo, newFakeUserRepo(client), images)

	_, err := svc.Avail(context.Background(), AvailInput{
		ClientID:      client.ID,
		SessionsTotal: 3,
		Signature:     "data:image/png;base64,AAAA",
	})
	if err == nil {
		t.Fatal("expected create error")
	}
	if len(images.deleted) != 1 {
		t.Errorf("hosted signature was not cleaned up, deleted = %v", images.deleted)
	}
}

// --- Session lifecycle ---

func TestScheduleSessionMovesToWaiting(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 3, 500)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	training := primitive.NewObjectID()
	updated, err := svc.ScheduleSession(context.Background(), engagement.ID, engagement.Schedule[1].ID, date, "10:00 AM", []primitive.ObjectID{training})
	if err != nil {
		t.Fatalf("ScheduleSession: %v", err)
	}

	session := updated.Schedule[1]
	if session.Status != domain.SessionWaiting {
		t.Errorf("status = %q, want waiting", session.Status)
	}
	if session.DateAssigned == nil || !session.DateAssigned.Equal(date) {
		t.Errorf("dateAssigned = %v, want %v", session.DateAssigned, date)
	}
	if session.TimeAssigned == nil || *session.TimeAssigned != "10:00 AM" {
		t.Errorf("timeAssigned = %v, want 10:00 AM", session.TimeAssigned)
	}
	if len(session.Trainings) != 1 || session.Trainings[0] != training {
		t.Errorf("trainings = %v, want [%v]", session.Trainings, training)
	}
	// Siblings untouched
	if updated.Schedule[0].Status != domain.SessionPending || updated.Schedule[2].Status != domain.SessionPending {
		t.Errorf("sibling sessions changed status")
	}
}

func TestCancelSessionClearsBackToPending(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 2, 500)

	training := primitive.NewObjectID()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ScheduleSession(context.Background(), engagement.ID, engagement.Schedule[0].ID, date, "9:00 AM", []primitive.ObjectID{training}); err != nil {
		t.Fatalf("ScheduleSession: %v", err)
	}

	updated, err := svc.CancelSession(context.Background(), engagement.ID, engagement.Schedule[0].ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}

	session := updated.Schedule[0]
	if session.Status != domain.SessionPending {
		t.Errorf("status = %q, want pending", session.Status)
	}
	if session.DateAssigned != nil || session.TimeAssigned != nil {
		t.Errorf("date/time not cleared: %v %v", session.DateAssigned, session.TimeAssigned)
	}
	// The training list survives a cancel.
	if len(session.Trainings) != 1 || session.Trainings[0] != training {
		t.Errorf("trainings = %v, want [%v]", session.Trainings, training)
	}
}

func TestCompleteLastSessionDeactivatesEngagement(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 2, 500)

	first, err := svc.CompleteSession(context.Background(), engagement.ID, engagement.Schedule[0].ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if first.Status != domain.EngagementActive {
		t.Errorf("status after first completion = %q, want active", first.Status)
	}

	second, err := svc.CompleteSession(context.Background(), engagement.ID, engagement.Schedule[1].ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if second.Status != domain.EngagementInactive {
		t.Errorf("status after last completion = %q, want inactive", second.Status)
	}

	// Persisted too
	stored, err := repo.GetByID(context.Background(), engagement.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.EngagementInactive {
		t.Errorf("stored status = %q, want inactive", stored.Status)
	}
}

func TestCancelAfterCompletionDoesNotReactivate(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 1, 500)

	if _, err := svc.CompleteSession(context.Background(), engagement.ID, engagement.Schedule[0].ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	updated, err := svc.CancelSession(context.Background(), engagement.ID, engagement.Schedule[0].ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if updated.Schedule[0].Status != domain.SessionPending {
		t.Errorf("session status = %q, want pending", updated.Schedule[0].Status)
	}
	// The engagement stays inactive even though a session went back to pending.
	if updated.Status != domain.EngagementInactive {
		t.Errorf("engagement status = %q, want inactive", updated.Status)
	}
}

func TestSessionOperationsReportNotFound(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 2, 500)

	_, err := svc.CompleteSession(context.Background(), primitive.NewObjectID(), engagement.Schedule[0].ID)
	if !errors.Is(err, ErrEngagementNotFound) {
		t.Errorf("unknown engagement: err = %v, want ErrEngagementNotFound", err)
	}

	_, err = svc.CompleteSession(context.Background(), engagement.ID, primitive.NewObjectID())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session: err = %v, want ErrSessionNotFound", err)
	}
}

func TestConcurrentScheduleWriteConflicts(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 2, 500)

	// Another writer bumps the revision between our read and write.
	stored := repo.engagements[engagement.ID]
	stored.Revision++

	_, err := svc.CompleteSession(context.Background(), engagement.ID, engagement.Schedule[0].ID)
	if !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("err = %v, want ErrScheduleConflict", err)
	}
}

// --- Reads and admin operations ---

func TestGetResolvesClientAndCoach(t *testing.T) {
	client, coach := testClient(), testCoach()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client, coach), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, coach, 3, 500)

	detail, err := svc.Get(context.Background(), engagement.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Client == nil || detail.Client.Email != client.Email {
		t.Errorf("client not resolved: %+v", detail.Client)
	}
	if detail.Coach == nil || detail.Coach.Email != coach.Email {
		t.Errorf("coach not resolved: %+v", detail.Coach)
	}
}

func TestUpdateValidatesCoachReassignment(t *testing.T) {
	client, coach := testClient(), testCoach()
	notACoach := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client, coach, notACoach), &fakeImageStorage{})
	engagement := availEngagement(t, svc, client, nil, 3, 500)

	if _, err := svc.Update(context.Background(), engagement.ID, UpdatePatch{CoachID: &notACoach.ID}); !errors.Is(err, ErrNotACoach) {
		t.Errorf("err = %v, want ErrNotACoach", err)
	}

	updated, err := svc.Update(context.Background(), engagement.ID, UpdatePatch{CoachID: &coach.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CoachID == nil || *updated.CoachID != coach.ID {
		t.Errorf("coachId = %v, want %v", updated.CoachID, coach.ID)
	}
}

func TestDeleteRemovesHostedSignature(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	images := &fakeImageStorage{}
	svc := NewEngagementService(repo, newFakeUserRepo(client), images)

	engagement, err := svc.Avail(context.Background(), AvailInput{
		ClientID:      client.ID,
		SessionsTotal: 2,
		Signature:     "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("Avail: %v", err)
	}

	if err := svc.Delete(context.Background(), engagement.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(images.deleted) != 1 {
		t.Errorf("signature not deleted, deleted = %v", images.deleted)
	}
	if err := svc.Delete(context.Background(), engagement.ID); !errors.Is(err, ErrEngagementNotFound) {
		t.Errorf("second delete: err = %v, want ErrEngagementNotFound", err)
	}
}

func TestHasActiveEngagement(t *testing.T) {
	client := testClient()
	repo := newFakeEngagementRepo()
	svc := NewEngagementService(repo, newFakeUserRepo(client), &fakeImageStorage{})

	if _, err := svc.HasActiveEngagement(context.Background(), client.ID); !errors.Is(err, ErrNoActiveEngagement) {
		t.Errorf("no engagements: err = %v, want ErrNoActiveEngagement", err)
	}

	engagement := availEngagement(t, svc, client, nil, 1, 500)
	active, err := svc.HasActiveEngagement(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("HasActiveEngagement: %v", err)
	}
	if active.ID != engagement.ID {
		t.Errorf("active.ID = %v, want %v", active.ID, engagement.ID)
	}

	// Completing the only session deactivates the engagement; no longer active.
	if _, err := svc.CompleteSession(context.Background(), engagement.ID, engagement.Schedule[0].ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if _, err := svc.HasActiveEngagement(context.Background(), client.ID); !errors.Is(err, ErrNoActiveEngagement) {
		t.Errorf("after completion: err = %v, want ErrNoActiveEngagement", err)
	}
}
