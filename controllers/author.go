package controllers

import (
	"fmt"
	"log"
	"net/http"

	"conference-management-api/models"
	"conference-management-api/services"

	"github.com/gin-gonic/gin"
)

// ResubmitPaper replaces the manuscript of a paper in REVISION_REQUIRED.
// Only the submitting author may resubmit. If the paper is in any other
// status the fresh upload is discarded and nothing changes.
func ResubmitPaper(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := paperService().GetPaper(paperID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !guard.CanAct(services.ActionResubmit, paper, user) {
		respondActionDenied(c, paper, user, "Only the submitting author can resubmit")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Revised manuscript file is required"})
		return
	}
	defer file.Close()

	fileURL, err := Files.Store(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store manuscript"})
		return
	}

	updated, oldFileURL, err := paperService().Resubmit(paperID, fileURL)
	if err != nil {
		deleteStoredFile(c, fileURL)
		respondServiceError(c, err)
		return
	}

	deleteStoredFile(c, oldFileURL)
	notifyResubmission(updated, user)

	c.JSON(http.StatusOK, gin.H{
		"message": "Paper resubmitted",
		"paper":   updated,
	})
}

func notifyResubmission(paper *models.Paper, author *models.User) {
	ns := notifyService()

	body := fmt.Sprintf("%s resubmitted \"%s\" after revision.", author.FullName(), paper.Title)

	admins, err := ns.AdminRecipients()
	if err != nil {
		log.Printf("failed to resolve admin recipients: %v", err)
	}
	intents := services.UserIntents(admins, "Paper resubmitted", body, "info", paper.PaperID)

	reviewers, err := ns.AssignedReviewers(paper)
	if err != nil {
		log.Printf("failed to resolve assigned reviewers: %v", err)
	}
	if len(reviewers) > 0 {
		reviewerBody := fmt.Sprintf("The paper \"%s\" you reviewed has been resubmitted after revision. Please review the new version.", paper.Title)
		intents = append(intents, services.UserIntents(reviewers, "Paper resubmitted", reviewerBody, "info", paper.PaperID)...)
	}

	ns.Dispatch(intents)
}

// UploadCameraReady stores the final manuscript version, typically after
// acceptance. Permitted for the submitting author and corresponding authors.
func UploadCameraReady(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := paperService().GetPaper(paperID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !guard.CanAct(services.ActionCamera, paper, user) {
		respondActionDenied(c, paper, user, "You cannot upload files for this paper")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Camera-ready file is required"})
		return
	}
	defer file.Close()

	fileURL, err := Files.Store(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	updated, oldURL, err := paperService().SetCameraReady(paperID, fileURL)
	if err != nil {
		deleteStoredFile(c, fileURL)
		respondServiceError(c, err)
		return
	}

	deleteStoredFile(c, oldURL)

	c.JSON(http.StatusOK, gin.H{
		"message": "Camera-ready version uploaded",
		"paper":   updated,
	})
}
