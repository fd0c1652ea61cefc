package service

import (
	"context"
	"errors"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---
type MembershipService interface {
	RecordTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Transaction, error)
	CheckIn(ctx context.Context, userID primitive.ObjectID) (*domain.AttendanceLog, error)
}

// --- Service Implementation ---

type membershipService struct {
	transactionRepo repository.TransactionRepository
	attendanceRepo  repository.AttendanceRepository
	userRepo        repository.UserRepository
}

// NewMembershipService creates a new instance of membershipService.
func NewMembershipService(
	transactionRepo repository.TransactionRepository,
	attendanceRepo repository.AttendanceRepository,
	userRepo repository.UserRepository,
) MembershipService {
	return &membershipService{
		transactionRepo: transactionRepo,
		attendanceRepo:  attendanceRepo,
		userRepo:        userRepo,
	}
}

// RecordTransaction stores a membership payment for the sales buckets.
func (s *membershipService) RecordTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.Amount < 0 {
		return nil, errors.New("transaction amount cannot be negative")
	}
	if _, err := s.userRepo.GetByID(ctx, tx.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	id, err := s.transactionRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return tx, nil
}

func (s *membershipService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.transactionRepo.List(ctx)
}

func (s *membershipService) ListTransactionsByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Transaction, error) {
	return s.transactionRepo.ListByUser(ctx, userID)
}

// CheckIn records a gym attendance log for the member, stamped now.
func (s *membershipService) CheckIn(ctx context.Context, userID primitive.ObjectID) (*domain.AttendanceLog, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	log := &domain.AttendanceLog{
		UserID: userID,
		Date:   time.Now().UTC(),
	}
	id, err := s.attendanceRepo.Create(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = id
	return log, nil
}
