package repository

import (
	"context"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("revision conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	SetGatewayCustomerID(ctx context.Context, id primitive.ObjectID, customerID string) error
}

// EngagementPatch carries the updatable fields of an engagement for the
// generic admin patch. Nil fields are left untouched. There is no
// cross-field validation here; editing SessionsTotal does not resize the
// schedule.
type EngagementPatch struct {
	CoachID       *primitive.ObjectID
	SessionsTotal *int
	SessionRate   *float64
	TotalAmount   *float64
	PackageLabel  *string
	Status        *domain.EngagementStatus
}

// EngagementRepository defines the interface for interacting with
// training-engagement records.
type EngagementRepository interface {
	Create(ctx context.Context, engagement *domain.TrainingEngagement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingEngagement, error)
	List(ctx context.Context) ([]domain.TrainingEngagement, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingEngagement, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingEngagement, error)
	Patch(ctx context.Context, id primitive.ObjectID, patch EngagementPatch) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindActiveByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainingEngagement, error)

	// UpdateSchedule persists a new schedule (and parent status) only if the
	// stored revision still matches the given one. Returns ErrConflict when
	// a concurrent writer got there first, ErrNotFound when the engagement
	// does not exist.
	UpdateSchedule(ctx context.Context, id primitive.ObjectID, revision int64, schedule []domain.Session, status domain.EngagementStatus) error

	// SalesTotal sums TotalAmount over engagements created in [since, now).
	SalesTotal(ctx context.Context, since time.Time) (float64, error)
}

// BranchRepository defines the interface for interacting with branch data.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
	Update(ctx context.Context, branch *domain.Branch) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TransactionRepository defines the interface for membership transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (primitive.ObjectID, error)
	List(ctx context.Context) ([]domain.Transaction, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Transaction, error)

	// SalesTotal sums Amount over transactions subscribed in [since, now).
	SalesTotal(ctx context.Context, since time.Time) (float64, error)
}

// AttendanceRepository defines the interface for gym check-in logs.
type AttendanceRepository interface {
	Create(ctx context.Context, log *domain.AttendanceLog) (primitive.ObjectID, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.AttendanceLog, error)
}
