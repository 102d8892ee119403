package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"

	"github.com/gin-gonic/gin"
)

// ApprovePaper moves a PENDING_APPROVAL paper into the review queue and
// notifies its corresponding authors. Approving twice is a conflict.
func ApprovePaper(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := paperService().Approve(paperID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ns := notifyService()
	body := fmt.Sprintf("Your paper \"%s\" has been approved and is now waiting for reviewer assignment.", paper.Title)
	ns.Dispatch(ns.CorrespondingAuthorIntents(paper, "Paper approved", body, "success"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Paper approved",
		"paper":   paper,
	})
}

type assignReviewersRequest struct {
	ReviewerIDs []int `json:"reviewer_ids" binding:"required,min=1"`
}

// AssignReviewers attaches reviewers to a paper. Re-assigning an already
// assigned reviewer is a silent no-op. Papers waiting for review activity
// move to UNDER_REVIEW.
func AssignReviewers(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req assignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paper, added, statusChanged, err := paperService().AssignReviewers(paperID, req.ReviewerIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ns := notifyService()
	var intents []services.Intent
	if statusChanged {
		body := fmt.Sprintf("Your paper \"%s\" is now under review.", paper.Title)
		intents = ns.CorrespondingAuthorIntents(paper, "Paper under review", body, "info")
	}
	if len(added) > 0 {
		body := fmt.Sprintf("You have been assigned to review \"%s\". Please submit your review from your reviewer dashboard.", paper.Title)
		intents = append(intents, services.UserIntents(added, "New review assignment", body, "info", paper.PaperID)...)
	}
	ns.Dispatch(intents)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Reviewers assigned",
		"paper":          paper,
		"newly_assigned": len(added),
	})
}

type finalStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetFinalStatus records the admin decision (ACCEPTED, REJECTED or
// REVISION_REQUIRED) and notifies corresponding authors.
func SetFinalStatus(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req finalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := strings.ToUpper(strings.TrimSpace(req.Status))
	if err := services.ValidateFinalStatus(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paper, err := paperService().SetFinalStatus(paperID, target)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var title, body, kind string
	switch target {
	case models.StatusAccepted:
		title = "Paper accepted"
		body = fmt.Sprintf("Congratulations! Your paper \"%s\" has been accepted. Please upload the camera-ready version and complete the registration payment.", paper.Title)
		kind = "success"
	case models.StatusRejected:
		title = "Paper rejected"
		body = fmt.Sprintf("We regret to inform you that your paper \"%s\" was not accepted.", paper.Title)
		kind = "error"
	case models.StatusRevisionRequired:
		title = "Revision required"
		body = fmt.Sprintf("Your paper \"%s\" requires a revision. Please address the review comments and resubmit.", paper.Title)
		kind = "warning"
	}

	ns := notifyService()
	ns.Dispatch(ns.CorrespondingAuthorIntents(paper, title, body, kind))

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated",
		"paper":   paper,
	})
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// UpdatePaymentStatus marks the registration payment of a paper.
func UpdatePaymentStatus(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paper, err := paperService().UpdatePaymentStatus(paperID, strings.ToUpper(strings.TrimSpace(req.PaymentStatus)))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated",
		"paper":   paper,
	})
}

// DeletePaper removes a paper and all dependent rows, deletes its stored
// files best-effort and notifies the corresponding authors.
func DeletePaper(c *gin.Context) {
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := paperService().DeletePaper(paperID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	deleteStoredFile(c, paper.FileURL)
	if paper.CameraReadyURL != nil {
		deleteStoredFile(c, *paper.CameraReadyURL)
	}

	ns := notifyService()
	body := fmt.Sprintf("Your submission \"%s\" has been removed from the conference system.", paper.Title)
	ns.Dispatch(ns.CorrespondingAuthorIntents(paper, "Submission removed", body, "warning"))

	c.JSON(http.StatusOK, gin.H{"message": "Paper deleted"})
}

// ListUsers lists accounts for the admin UI, optionally filtered by role.
// The main consumer is the reviewer picker on the assignment screen.
func ListUsers(c *gin.Context) {
	query := config.DB.Where("delete_at IS NULL")
	if role := strings.ToUpper(strings.TrimSpace(c.Query("role"))); role != "" {
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("last_name ASC, first_name ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}
