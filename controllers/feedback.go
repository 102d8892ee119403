package controllers

import (
	"net/http"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
	"conference-management-api/utils"

	"github.com/gin-gonic/gin"
)

type feedbackRequest struct {
	Message string `json:"message" binding:"required"`
}

// SubmitFeedback appends a message to the paper's discussion thread. Anyone
// with access to the paper may post; feedback never changes the status.
func SubmitFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paper, ok := loadGuardedPaper(c, user)
	if !ok {
		return
	}

	if !guard.CanAct(services.ActionFeedback, paper, user) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot post feedback on this paper"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := paperService().AddFeedback(paper.PaperID, user.UserID, utils.SanitizeInput(req.Message))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Feedback submitted",
		"feedback": feedback,
	})
}

// GetFeedback lists the paper's discussion thread in send order.
func GetFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paper, ok := loadGuardedPaper(c, user)
	if !ok {
		return
	}

	var feedback []models.Feedback
	err := config.DB.Preload("Sender").
		Where("paper_id = ?", paper.PaperID).
		Order("sent_at ASC").
		Find(&feedback).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": feedback,
		"total":    len(feedback),
	})
}
