package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
	"conference-management-api/utils"

	"github.com/gin-gonic/gin"
)

// SubmitPaper handles a new submission: manuscript upload, paper and author
// rows, auto-provisioned corresponding-author accounts and the admin
// notification fan-out. Multipart fields: title, abstract, topic_area,
// keywords (JSON array), authors (JSON array), file.
func SubmitPaper(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	title := utils.SanitizeInput(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	abstract := utils.SanitizeInput(c.PostForm("abstract"))
	topicArea := utils.SanitizeInput(c.PostForm("topic_area"))

	var keywords []string
	if raw := c.PostForm("keywords"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keywords must be a JSON array of strings"})
			return
		}
	}

	var authors []services.AuthorInput
	if raw := c.PostForm("authors"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &authors); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "authors must be a JSON array"})
			return
		}
	}
	for i, author := range authors {
		if author.Name == "" || !utils.ValidateEmail(author.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("author %d needs a name and a valid email", i+1)})
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Manuscript file is required"})
		return
	}
	defer file.Close()

	fileURL, err := Files.Store(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store manuscript"})
		return
	}

	paper, provisioned, err := paperService().CreatePaper(services.CreatePaperInput{
		Title:       title,
		Abstract:    abstract,
		Keywords:    utils.NormalizeKeywords(keywords),
		TopicArea:   topicArea,
		FileURL:     fileURL,
		SubmittedBy: user.UserID,
		Authors:     authors,
	})
	if err != nil {
		// Do not leave an orphaned upload behind a failed submission.
		deleteStoredFile(c, fileURL)
		respondServiceError(c, err)
		return
	}

	ns := notifyService()
	ns.Dispatch(ns.SubmissionIntents(paper, user, provisioned))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Paper submitted",
		"paper":   paper,
	})
}

// GetPapers lists the papers visible to the caller: admins see everything,
// authors their own and email-matched papers, reviewers their assignments.
func GetPapers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	papers, err := paperService().ListPapers(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"papers": papers,
		"total":  len(papers),
	})
}

// GetPaper returns one paper if the caller may see it.
func GetPaper(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paper, ok := loadGuardedPaper(c, user)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		// Assignment details are an admin concern.
		paper.Assignments = nil
	}

	c.JSON(http.StatusOK, gin.H{"paper": paper})
}

// GetPaperReviews lists the reviews of a paper the caller may see. Reviewer
// identities are only exposed to admins.
func GetPaperReviews(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paper, ok := loadGuardedPaper(c, user)
	if !ok {
		return
	}

	query := config.DB.Where("paper_id = ?", paper.PaperID).Order("reviewed_at ASC")
	if user.Role == models.RoleAdmin {
		query = query.Preload("Reviewer")
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	if user.Role != models.RoleAdmin {
		for i := range reviews {
			reviews[i].ReviewerID = 0
			reviews[i].Reviewer = nil
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// deleteStoredFile removes an uploaded file best-effort; a failure is logged
// by the caller path and never fails the request.
func deleteStoredFile(c *gin.Context, ref string) {
	if ref == "" {
		return
	}
	if err := Files.Delete(c.Request.Context(), ref); err != nil {
		logFileDeleteFailure(ref, err)
	}
}
