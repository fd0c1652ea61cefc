package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"
	"github.com/CarlJazper/PSPWEB/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrBranchNotFound   = errors.New("branch not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrMediaURLError    = errors.New("failed to generate media URL")
)

// MediaUploadTicket is handed to the browser for a direct-to-bucket upload.
type MediaUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // Reported back on confirm
}

// ExerciseDetail is an exercise plus a temporary URL for its demo media.
type ExerciseDetail struct {
	domain.Exercise
	MediaURL string `json:"mediaUrl,omitempty"`
}

// --- Service Interface ---
type CatalogService interface {
	// Branches
	CreateBranch(ctx context.Context, branch *domain.Branch) (*domain.Branch, error)
	GetBranch(ctx context.Context, id primitive.ObjectID) (*domain.Branch, error)
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	UpdateBranch(ctx context.Context, branch *domain.Branch) (*domain.Branch, error)
	DeleteBranch(ctx context.Context, id primitive.ObjectID) error

	// Exercises
	CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*ExerciseDetail, error)
	ListExercises(ctx context.Context) ([]ExerciseDetail, error)
	UpdateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error

	// Exercise media
	RequestMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadTicket, error)
	ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
}

// --- Service Implementation ---

// catalogService implements the CatalogService interface.
type catalogService struct {
	branchRepo   repository.BranchRepository
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	branchRepo repository.BranchRepository,
	exerciseRepo repository.ExerciseRepository,
	fileStorage storage.FileStorage,
) CatalogService {
	return &catalogService{
		branchRepo:   branchRepo,
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

// === Branches ===

func (s *catalogService) CreateBranch(ctx context.Context, branch *domain.Branch) (*domain.Branch, error) {
	if branch.Name == "" {
		return nil, errors.New("branch name is required")
	}
	id, err := s.branchRepo.Create(ctx, branch)
	if err != nil {
		return nil, err
	}
	branch.ID = id
	return branch, nil
}

func (s *catalogService) GetBranch(ctx context.Context, id primitive.ObjectID) (*domain.Branch, error) {
	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return branch, nil
}

func (s *catalogService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return s.branchRepo.List(ctx)
}

func (s *catalogService) UpdateBranch(ctx context.Context, branch *domain.Branch) (*domain.Branch, error) {
	if err := s.branchRepo.Update(ctx, branch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return s.branchRepo.GetByID(ctx, branch.ID)
}

func (s *catalogService) DeleteBranch(ctx context.Context, id primitive.ObjectID) error {
	if err := s.branchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBranchNotFound
		}
		return err
	}
	return nil
}

// === Exercises ===

func (s *catalogService) CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if exercise.Name == "" {
		return nil, errors.New("exercise name is required")
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

func (s *catalogService) GetExercise(ctx context.Context, id primitive.ObjectID) (*ExerciseDetail, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	detail := &ExerciseDetail{Exercise: *exercise}
	detail.MediaURL = s.mediaURL(ctx, exercise.MediaKey)
	return detail, nil
}

func (s *catalogService) ListExercises(ctx context.Context) ([]ExerciseDetail, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]ExerciseDetail, len(exercises))
	for i := range exercises {
		details[i] = ExerciseDetail{Exercise: exercises[i]}
		details[i].MediaURL = s.mediaURL(ctx, exercises[i].MediaKey)
	}
	return details, nil
}

// mediaURL presigns a download URL for the exercise media, or returns ""
// when there is none or presigning fails. A broken media link should not
// fail a catalog read.
func (s *catalogService) mediaURL(ctx context.Context, objectKey string) string {
	if objectKey == "" {
		return ""
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return ""
	}
	return url
}

func (s *catalogService) UpdateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	// Carry the stored media key through: the generic update must not drop
	// an uploaded demo.
	existing, err := s.exerciseRepo.GetByID(ctx, exercise.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.MediaKey == "" {
		exercise.MediaKey = existing.MediaKey
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exercise.ID)
}

func (s *catalogService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if exercise.MediaKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, exercise.MediaKey)
	}
	return nil
}

// === Exercise media ===

// RequestMediaUploadURL generates a presigned PUT URL for an exercise's demo
// image/video. The browser uploads directly to the bucket and confirms with
// the returned object key.
func (s *catalogService) RequestMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadTicket, error) {
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	ext := extensionFromContentType(contentType)
	objectKey := path.Join("exercises", exerciseID.Hex(), uuid.NewString()+ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaURLError, err)
	}

	return &MediaUploadTicket{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmMediaUpload stores the object key after the browser finished the
// direct upload, replacing (and deleting) any previous media object.
func (s *catalogService) ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	previousKey := exercise.MediaKey
	exercise.MediaKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	if previousKey != "" && previousKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}
	return exercise, nil
}

func extensionFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	default:
		return ""
	}
}
