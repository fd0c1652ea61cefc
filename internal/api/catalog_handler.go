package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler serves the branch and exercise reference-data endpoints.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

type BranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Contact string `json:"contact"`
	Place   string `json:"place"`
}

type ExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetMuscle string `json:"targetMuscle"`
	Difficulty   string `json:"difficulty"`
	Instructions string `json:"instructions"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// === Branches ===

func (h *CatalogHandler) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	branch, err := h.catalogService.CreateBranch(c.Request.Context(), &domain.Branch{
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
		Place:   req.Place,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Error creating branch: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Branch created successfully", "branch": branch})
}

func (h *CatalogHandler) GetAllBranches(c *gin.Context) {
	branches, err := h.catalogService.ListBranches(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching branches: "+err.Error())
		return
	}
	if branches == nil {
		branches = []domain.Branch{}
	}
	c.JSON(http.StatusOK, gin.H{"branch": branches})
}

func (h *CatalogHandler) GetBranch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	branch, err := h.catalogService.GetBranch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBranchNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error fetching branch: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch})
}

func (h *CatalogHandler) UpdateBranch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	branch, err := h.catalogService.UpdateBranch(c.Request.Context(), &domain.Branch{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
		Place:   req.Place,
	})
	if err != nil {
		if errors.Is(err, service.ErrBranchNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, "Error updating branch: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch updated successfully", "branch": branch})
}

func (h *CatalogHandler) DeleteBranch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	if err := h.catalogService.DeleteBranch(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrBranchNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error deleting branch: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted successfully"})
}

// === Exercises ===

func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), &domain.Exercise{
		Name:         req.Name,
		TargetMuscle: req.TargetMuscle,
		Difficulty:   req.Difficulty,
		Instructions: req.Instructions,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Error creating exercise: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Exercise created successfully", "exercise": exercise})
}

func (h *CatalogHandler) GetAllExercises(c *gin.Context) {
	exercises, err := h.catalogService.ListExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error fetching exercises: "+err.Error())
		return
	}
	if exercises == nil {
		exercises = []service.ExerciseDetail{}
	}
	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

func (h *CatalogHandler) GetExercise(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	exercise, err := h.catalogService.GetExercise(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error fetching exercise: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercise": exercise})
}

func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.UpdateExercise(c.Request.Context(), &domain.Exercise{
		ID:           id,
		Name:         req.Name,
		TargetMuscle: req.TargetMuscle,
		Difficulty:   req.Difficulty,
		Instructions: req.Instructions,
	})
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, "Error updating exercise: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exercise updated successfully", "exercise": exercise})
}

func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	if err := h.catalogService.DeleteExercise(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error deleting exercise: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exercise deleted successfully"})
}

// === Exercise media ===

// RequestMediaUpload hands the browser a presigned PUT URL for an exercise
// demo image/video.
func (h *CatalogHandler) RequestMediaUpload(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ticket, err := h.catalogService.RequestMediaUploadURL(c.Request.Context(), id, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMediaURLError):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Error generating upload URL: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmMediaUpload records the object key after the direct upload finished.
func (h *CatalogHandler) ConfirmMediaUpload(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format.")
		return
	}

	var req MediaConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.ConfirmMediaUpload(c.Request.Context(), id, req.ObjectKey)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Error confirming upload: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media upload confirmed", "exercise": exercise})
}
