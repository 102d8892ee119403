package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"conference-management-api/models"

	"github.com/gin-gonic/gin"
)

type submitReviewRequest struct {
	Comments       string `json:"comments" binding:"required"`
	Recommendation string `json:"recommendation" binding:"required"`
}

// SubmitReview records the caller's review of an assigned paper. Submitting
// again replaces the earlier review. Corresponding authors are notified with
// the review content.
func SubmitReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recommendation := strings.ToUpper(strings.TrimSpace(req.Recommendation))
	if !models.ValidRecommendation(recommendation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recommendation must be one of ACCEPT, REJECT, MINOR_REVISION, MAJOR_REVISION"})
		return
	}

	paper, review, err := paperService().UpsertReview(paperID, user.UserID, req.Comments, recommendation)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ns := notifyService()
	body := fmt.Sprintf("A review has been submitted for your paper \"%s\".\n\nRecommendation: %s\n\nComments:\n%s",
		paper.Title, review.Recommendation, review.Comments)
	ns.Dispatch(ns.CorrespondingAuthorIntents(paper, "New review received", body, "info"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Review submitted",
		"review":  review,
	})
}
