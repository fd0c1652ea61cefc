package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportingHandler serves the admin dashboard reads plus the membership
// transaction and attendance writes that feed them.
type ReportingHandler struct {
	reportingService  service.ReportingService
	membershipService service.MembershipService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(
	reportingService service.ReportingService,
	membershipService service.MembershipService,
) *ReportingHandler {
	return &ReportingHandler{
		reportingService:  reportingService,
		membershipService: membershipService,
	}
}

// --- DTOs ---

type TransactionRequest struct {
	UserID         string     `json:"userId" binding:"required"`
	BranchID       *string    `json:"branchId"`
	PlanLabel      string     `json:"plan"`
	Amount         float64    `json:"amount" binding:"min=0"`
	SubscribedDate *time.Time `json:"subscribedDate"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

type CheckInRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// --- Handler Methods ---

// GetSalesStats returns the day/month/year revenue totals.
func (h *ReportingHandler) GetSalesStats(c *gin.Context) {
	stats, err := h.reportingService.SalesStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching sales stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTodayAttendance lists today's check-ins with members resolved.
func (h *ReportingHandler) GetTodayAttendance(c *gin.Context) {
	entries, err := h.reportingService.TodayAttendance(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching attendance logs")
		return
	}
	if entries == nil {
		entries = []service.AttendanceEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

// CreateTransaction records a membership payment.
func (h *ReportingHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	tx := &domain.Transaction{
		UserID:         userID,
		PlanLabel:      req.PlanLabel,
		Amount:         req.Amount,
		ExpirationDate: req.ExpirationDate,
	}
	if req.SubscribedDate != nil {
		tx.SubscribedDate = *req.SubscribedDate
	} else {
		tx.SubscribedDate = time.Now().UTC()
	}
	if req.BranchID != nil && *req.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(*req.BranchID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid branch ID format.")
			return
		}
		tx.BranchID = &branchID
	}

	created, err := h.membershipService.RecordTransaction(c.Request.Context(), tx)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusBadRequest, "Error recording transaction: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded", "transaction": created})
}

// GetAllTransactions lists every membership transaction.
func (h *ReportingHandler) GetAllTransactions(c *gin.Context) {
	transactions, err := h.membershipService.ListTransactions(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching transactions: "+err.Error())
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetTransactionsByUser lists one member's transactions.
func (h *ReportingHandler) GetTransactionsByUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	transactions, err := h.membershipService.ListTransactionsByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching transactions: "+err.Error())
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// CheckIn records a gym attendance log for the member.
func (h *ReportingHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	log, err := h.membershipService.CheckIn(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error recording check-in: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Check-in recorded", "log": log})
}
