package service

import (
	"context"
	"errors"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStatsFetchFailed = errors.New("failed to fetch sales stats")
)

// SalesStats are the dashboard's time-bucketed revenue totals. All three are
// zero, never null, on an empty record set.
type SalesStats struct {
	TodaySales   float64 `json:"todaySales"`
	MonthlySales float64 `json:"monthlySales"`
	YearlySales  float64 `json:"yearlySales"`
}

// AttendanceEntry is a check-in log with its member resolved.
type AttendanceEntry struct {
	domain.AttendanceLog
	User *UserSummary `json:"user,omitempty"`
}

// --- Service Interface ---
type ReportingService interface {
	SalesStats(ctx context.Context) (*SalesStats, error)
	TodayAttendance(ctx context.Context) ([]AttendanceEntry, error)
}

// --- Service Implementation ---

// reportingService computes read-only aggregates for the admin dashboard.
// All bucket boundaries are taken in a fixed reporting timezone.
type reportingService struct {
	engagementRepo  repository.EngagementRepository
	transactionRepo repository.TransactionRepository
	attendanceRepo  repository.AttendanceRepository
	userRepo        repository.UserRepository
	location        *time.Location
	now             func() time.Time
}

// NewReportingService creates a new instance of reportingService. The
// timezone name must resolve, e.g. "Asia/Manila".
func NewReportingService(
	engagementRepo repository.EngagementRepository,
	transactionRepo repository.TransactionRepository,
	attendanceRepo repository.AttendanceRepository,
	userRepo repository.UserRepository,
	timezone string,
) (ReportingService, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &reportingService{
		engagementRepo:  engagementRepo,
		transactionRepo: transactionRepo,
		attendanceRepo:  attendanceRepo,
		userRepo:        userRepo,
		location:        location,
		now:             time.Now,
	}, nil
}

// SalesStats sums engagement totals and membership transaction amounts for
// [start-of-day, now), [start-of-month, now) and [start-of-year, now).
func (s *reportingService) SalesStats(ctx context.Context) (*SalesStats, error) {
	now := s.now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, s.location)

	stats := &SalesStats{}
	for _, bucket := range []struct {
		since time.Time
		total *float64
	}{
		{startOfDay, &stats.TodaySales},
		{startOfMonth, &stats.MonthlySales},
		{startOfYear, &stats.YearlySales},
	} {
		engagementTotal, err := s.engagementRepo.SalesTotal(ctx, bucket.since)
		if err != nil {
			return nil, ErrStatsFetchFailed
		}
		transactionTotal, err := s.transactionRepo.SalesTotal(ctx, bucket.since)
		if err != nil {
			return nil, ErrStatsFetchFailed
		}
		*bucket.total = engagementTotal + transactionTotal
	}

	return stats, nil
}

// TodayAttendance lists the current day's check-ins in the reporting
// timezone, with each member resolved to a user summary.
func (s *reportingService) TodayAttendance(ctx context.Context) ([]AttendanceEntry, error) {
	now := s.now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	startOfTomorrow := startOfDay.AddDate(0, 0, 1)

	logs, err := s.attendanceRepo.ListBetween(ctx, startOfDay, startOfTomorrow)
	if err != nil {
		return nil, err
	}

	// Resolve members in one query.
	idSet := make(map[primitive.ObjectID]struct{})
	for i := range logs {
		idSet[logs[i].UserID] = struct{}{}
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

	entries := make([]AttendanceEntry, len(logs))
	for i := range logs {
		entries[i] = AttendanceEntry{AttendanceLog: logs[i], User: byID[logs[i].UserID]}
	}
	return entries, nil
}
