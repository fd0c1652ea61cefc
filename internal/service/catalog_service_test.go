package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeBranchRepo struct {
	branches map[primitive.ObjectID]*domain.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: make(map[primitive.ObjectID]*domain.Branch)}
}

func (r *fakeBranchRepo) Create(ctx context.Context, branch *domain.Branch) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *branch
	stored.ID = id
	r.branches[id] = &stored
	return id, nil
}

func (r *fakeBranchRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (r *fakeBranchRepo) List(ctx context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	for _, b := range r.branches {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBranchRepo) Update(ctx context.Context, branch *domain.Branch) error {
	if _, ok := r.branches[branch.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *branch
	r.branches[branch.ID] = &stored
	return nil
}

func (r *fakeBranchRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.branches[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.branches, id)
	return nil
}

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *exercise
	stored.ID = id
	r.exercises[id] = &stored
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *exercise
	r.exercises[exercise.ID] = &stored
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

// fakeFileStorage hands out deterministic presigned URLs and records deletes.
type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://bucket.example/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://bucket.example/get/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func newTestCatalogService() (CatalogService, *fakeExerciseRepo, *fakeFileStorage) {
	exercises := newFakeExerciseRepo()
	files := &fakeFileStorage{}
	return NewCatalogService(newFakeBranchRepo(), exercises, files), exercises, files
}

func TestBranchCRUD(t *testing.T) {
	svc, _, _ := newTestCatalogService()

	branch, err := svc.CreateBranch(context.Background(), &domain.Branch{Name: "Taguig", Place: "BGC"})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if branch.ID.IsZero() {
		t.Fatal("created branch has no ID")
	}

	branch.Contact = "0917-000-0000"
	if _, err := svc.UpdateBranch(context.Background(), branch); err != nil {
		t.Fatalf("UpdateBranch: %v", err)
	}
	got, err := svc.GetBranch(context.Background(), branch.ID)
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if got.Contact != "0917-000-0000" {
		t.Errorf("contact = %q", got.Contact)
	}

	if err := svc.DeleteBranch(context.Background(), branch.ID); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if _, err := svc.GetBranch(context.Background(), branch.ID); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("err = %v, want ErrBranchNotFound", err)
	}
}

func TestExerciseMediaUploadFlow(t *testing.T) {
	svc, _, files := newTestCatalogService()

	exercise, err := svc.CreateExercise(context.Background(), &domain.Exercise{Name: "Bench Press", TargetMuscle: "Chest"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}

	ticket, err := svc.RequestMediaUploadURL(context.Background(), exercise.ID, "video/mp4")
	if err != nil {
		t.Fatalf("RequestMediaUploadURL: %v", err)
	}
	if !strings.HasPrefix(ticket.ObjectKey, "exercises/"+exercise.ID.Hex()+"/") {
		t.Errorf("objectKey = %q, want exercises/<id>/ prefix", ticket.ObjectKey)
	}
	if !strings.HasSuffix(ticket.ObjectKey, ".mp4") {
		t.Errorf("objectKey = %q, want .mp4 suffix", ticket.ObjectKey)
	}
	if ticket.UploadURL == "" {
		t.Error("empty upload URL")
	}

	if _, err := svc.ConfirmMediaUpload(context.Background(), exercise.ID, ticket.ObjectKey); err != nil {
		t.Fatalf("ConfirmMediaUpload: %v", err)
	}
	detail, err := svc.GetExercise(context.Background(), exercise.ID)
	if err != nil {
		t.Fatalf("GetExercise: %v", err)
	}
	if !strings.Contains(detail.MediaURL, ticket.ObjectKey) {
		t.Errorf("mediaURL = %q, want presigned URL for %q", detail.MediaURL, ticket.ObjectKey)
	}

	// A replacement upload removes the old object.
	second, err := svc.RequestMediaUploadURL(context.Background(), exercise.ID, "image/png")
	if err != nil {
		t.Fatalf("RequestMediaUploadURL: %v", err)
	}
	if _, err := svc.ConfirmMediaUpload(context.Background(), exercise.ID, second.ObjectKey); err != nil {
		t.Fatalf("ConfirmMediaUpload: %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != ticket.ObjectKey {
		t.Errorf("deleted = %v, want [%v]", files.deleted, ticket.ObjectKey)
	}
}

func TestUpdateExercisePreservesMediaKey(t *testing.T) {
	svc, exercises, _ := newTestCatalogService()

	exercise, err := svc.CreateExercise(context.Background(), &domain.Exercise{Name: "Squat"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	exercises.exercises[exercise.ID].MediaKey = "exercises/demo.mp4"

	updated, err := svc.UpdateExercise(context.Background(), &domain.Exercise{ID: exercise.ID, Name: "Back Squat"})
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if updated.MediaKey != "exercises/demo.mp4" {
		t.Errorf("mediaKey = %q, want preserved", updated.MediaKey)
	}
	if updated.Name != "Back Squat" {
		t.Errorf("name = %q", updated.Name)
	}
}

func TestDeleteExerciseRemovesMedia(t *testing.T) {
	svc, exercises, files := newTestCatalogService()

	exercise, err := svc.CreateExercise(context.Background(), &domain.Exercise{Name: "Deadlift"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	exercises.exercises[exercise.ID].MediaKey = "exercises/dl.mp4"

	if err := svc.DeleteExercise(context.Background(), exercise.ID); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != "exercises/dl.mp4" {
		t.Errorf("deleted = %v, want [exercises/dl.mp4]", files.deleted)
	}
}
