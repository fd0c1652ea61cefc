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

// EngagementHandler serves the avail-trainer endpoints.
type EngagementHandler struct {
	engagementService service.EngagementService
	paymentService    service.PaymentService
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(
	engagementService service.EngagementService,
	paymentService service.PaymentService,
) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		paymentService:    paymentService,
	}
}

// --- DTOs ---

type CreateEngagementRequest struct {
	ClientID     string  `json:"clientId" binding:"required"`
	CoachID      *string `json:"coachId"`
	Sessions     int     `json:"sessions" binding:"required,min=1"`
	SessionRate  float64 `json:"sessionRate" binding:"min=0"`
	PackageLabel string  `json:"package"`
	Signature    string  `json:"signature"` // base64 data URI, optional
}

type UpdateEngagementRequest struct {
	CoachID      *string                  `json:"coachId"`
	Sessions     *int                     `json:"sessions"`
	SessionRate  *float64                 `json:"sessionRate"`
	TotalAmount  *float64                 `json:"total"`
	PackageLabel *string                  `json:"package"`
	Status       *domain.EngagementStatus `json:"status"`
}

type ScheduleSessionRequest struct {
	Date      time.Time `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
	Trainings []string  `json:"trainings"`
}

type PaymentIntentRequest struct {
	UserID string  `json:"userId" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// --- Handler Methods ---

// CreateEngagement handles the client's "avail trainer" purchase.
func (h *EngagementHandler) CreateEngagement(c *gin.Context) {
	var req CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}
	var coachID *primitive.ObjectID
	if req.CoachID != nil && *req.CoachID != "" {
		id, err := primitive.ObjectIDFromHex(*req.CoachID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid coach ID format.")
			return
		}
		coachID = &id
	}

	engagement, err := h.engagementService.Avail(c.Request.Context(), service.AvailInput{
		ClientID:      clientID,
		CoachID:       coachID,
		SessionsTotal: req.Sessions,
		SessionRate:   req.SessionRate,
		PackageLabel:  req.PackageLabel,
		Signature:     req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrCoachNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotACoach), errors.Is(err, service.ErrInvalidSessionCount):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSignatureUpload):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, "Error creating engagement: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Engagement created successfully", "trainer": engagement})
}

// GetAllEngagements lists every engagement, newest first, with client/coach resolved.
func (h *EngagementHandler) GetAllEngagements(c *gin.Context) {
	engagements, err := h.engagementService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching engagements: "+err.Error())
		return
	}
	if engagements == nil {
		engagements = []service.EngagementDetail{}
	}
	c.JSON(http.StatusOK, engagements)
}

// GetEngagement fetches one engagement by ID.
func (h *EngagementHandler) GetEngagement(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	engagement, err := h.engagementService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEngagementNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error fetching engagement: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, engagement)
}

// UpdateEngagement applies a generic admin patch, e.g. coach reassignment.
func (h *EngagementHandler) UpdateEngagement(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patch := service.UpdatePatch{
		SessionsTotal: req.Sessions,
		SessionRate:   req.SessionRate,
		TotalAmount:   req.TotalAmount,
		PackageLabel:  req.PackageLabel,
		Status:        req.Status,
	}
	if req.CoachID != nil && *req.CoachID != "" {
		coachID, err := primitive.ObjectIDFromHex(*req.CoachID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid coach ID format.")
			return
		}
		patch.CoachID = &coachID
	}

	engagement, err := h.engagementService.Update(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEngagementNotFound), errors.Is(err, service.ErrCoachNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotACoach):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, "Error updating engagement: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Engagement updated successfully", "trainer": engagement})
}

// DeleteEngagement removes the whole engagement record.
func (h *EngagementHandler) DeleteEngagement(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.engagementService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrEngagementNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error deleting engagement: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Engagement deleted successfully"})
}

// GetByCoach lists the engagements assigned to one coach.
func (h *EngagementHandler) GetByCoach(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	h.listFiltered(c, func() ([]service.EngagementDetail, error) {
		return h.engagementService.ListByCoach(c.Request.Context(), id)
	})
}

// GetByClient lists the services one client has availed.
func (h *EngagementHandler) GetByClient(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	h.listFiltered(c, func() ([]service.EngagementDetail, error) {
		return h.engagementService.ListByClient(c.Request.Context(), id)
	})
}

func (h *EngagementHandler) listFiltered(c *gin.Context, fetch func() ([]service.EngagementDetail, error)) {
	engagements, err := fetch()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching engagements: "+err.Error())
		return
	}
	if engagements == nil {
		engagements = []service.EngagementDetail{}
	}
	c.JSON(http.StatusOK, engagements)
}

// ScheduleSession assigns a date/time (and trainings) to one session.
func (h *EngagementHandler) ScheduleSession(c *gin.Context) {
	engagementID, sessionID, ok := h.sessionIDs(c)
	if !ok {
		return
	}

	var req ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainings := make([]primitive.ObjectID, 0, len(req.Trainings))
	for _, t := range req.Trainings {
		trainingID, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid training ID format.")
			return
		}
		trainings = append(trainings, trainingID)
	}

	_, err := h.engagementService.ScheduleSession(c.Request.Context(), engagementID, sessionID, req.Date, req.Time, trainings)
	if err != nil {
		h.abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session schedule updated"})
}

// CancelSession clears a session back to pending.
func (h *EngagementHandler) CancelSession(c *gin.Context) {
	engagementID, sessionID, ok := h.sessionIDs(c)
	if !ok {
		return
	}

	_, err := h.engagementService.CancelSession(c.Request.Context(), engagementID, sessionID)
	if err != nil {
		h.abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session schedule cancelled"})
}

// CompleteSession marks a session completed; the last one deactivates the
// engagement.
func (h *EngagementHandler) CompleteSession(c *gin.Context) {
	engagementID, sessionID, ok := h.sessionIDs(c)
	if !ok {
		return
	}

	_, err := h.engagementService.CompleteSession(c.Request.Context(), engagementID, sessionID)
	if err != nil {
		h.abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session completed"})
}

// HasActiveTraining reports whether the client currently has an active engagement.
func (h *EngagementHandler) HasActiveTraining(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	engagement, err := h.engagementService.HasActiveEngagement(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveEngagement) {
			c.JSON(http.StatusNotFound, gin.H{
				"message":   "User does not have active training",
				"hasActive": false,
			})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "System failure, please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "User has active training",
		"training":  engagement,
		"hasActive": true,
	})
}

// CreatePaymentIntent forwards the purchase amount to the payment gateway
// and returns the client secret.
func (h *EngagementHandler) CreatePaymentIntent(c *gin.Context) {
	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	clientSecret, err := h.paymentService.CreateEngagementIntent(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrNoGatewayCustomer):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Error creating payment intent")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// --- Helpers ---

func (h *EngagementHandler) pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *EngagementHandler) sessionIDs(c *gin.Context) (engagementID, sessionID primitive.ObjectID, ok bool) {
	engagementID, ok = h.pathID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Query("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid or missing sessionId.")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return engagementID, sessionID, true
}

func (h *EngagementHandler) abortSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEngagementNotFound), errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrScheduleConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Error updating session: "+err.Error())
	}
}
