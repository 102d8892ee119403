package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
	"conference-management-api/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Files is the file storage backend, set once at startup.
var Files storage.FileStore

var guard = services.NewAccessGuard()

func paperService() *services.PaperService {
	return services.NewPaperService(config.DB)
}

func notifyService() *services.NotificationService {
	return services.NewNotificationService(config.DB)
}

// currentUser loads the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

func paperIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid paper ID"})
		return 0, false
	}
	return id, true
}

// respondServiceError maps service failures onto the HTTP error taxonomy.
// Unclassified errors are logged and answered generically so internal detail
// never reaches the client.
func respondServiceError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	var invalid *services.ValidationError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "status": conflict.Status})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
	case errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not assigned to this paper"})
	default:
		log.Printf("unhandled service error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondActionDenied answers a failed permission check. Callers without
// visibility get the same answer as a missing paper, so probing ids reveals
// nothing; viewers lacking the specific permission get 403.
func respondActionDenied(c *gin.Context, paper *models.Paper, user *models.User, message string) {
	if !guard.CanView(paper, user) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func logFileDeleteFailure(ref string, err error) {
	log.Printf("failed to delete stored file %s: %v", ref, err)
}

// loadGuardedPaper resolves the paper and checks visibility. A paper the
// caller cannot see is reported as not found, never as forbidden.
func loadGuardedPaper(c *gin.Context, user *models.User) (*models.Paper, bool) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return nil, false
	}

	paper, err := paperService().GetPaper(paperID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}

	if !guard.CanView(paper, user) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paper not found"})
		return nil, false
	}
	return paper, true
}
