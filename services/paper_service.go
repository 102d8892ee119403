package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-management-api/models"
	"conference-management-api/utils"

	"gorm.io/gorm"
)

// Test seams, overridable the same way the auth controller swaps its token
// generator.
var (
	hashPassword   = utils.HashPassword
	tempCredential = utils.GenerateTemporaryPassword
)

// ErrNotAssigned is returned when a reviewer submits a review for a paper
// they were never assigned to.
var ErrNotAssigned = errors.New("reviewer is not assigned to this paper")

// PaperService owns every persistent lifecycle transition. Each multi-row
// operation runs in a single transaction so a failed step leaves nothing
// behind. Notification dispatch is the caller's job and happens only after
// the transaction has committed.
type PaperService struct {
	db *gorm.DB
}

func NewPaperService(db *gorm.DB) *PaperService {
	return &PaperService{db: db}
}

// AuthorInput is one structured author entry on a submission.
type AuthorInput struct {
	Salutation      string `json:"salutation"`
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Institution     string `json:"institution"`
	IsCorresponding bool   `json:"is_corresponding"`
}

// CreatePaperInput carries the validated submission payload.
type CreatePaperInput struct {
	Title       string
	Abstract    string
	Keywords    string
	TopicArea   string
	FileURL     string
	SubmittedBy int
	Authors     []AuthorInput
}

// ProvisionedAccount describes an author account auto-created during
// submission. The plaintext credential exists only for the welcome email.
type ProvisionedAccount struct {
	UserID   int
	Name     string
	Email    string
	Password string
}

// CreatePaper creates the paper at PENDING_APPROVAL together with its author
// rows, and provisions accounts for corresponding authors that do not have
// one yet.
func (s *PaperService) CreatePaper(input CreatePaperInput) (*models.Paper, []ProvisionedAccount, error) {
	now := time.Now()
	paper := models.Paper{
		Title:         input.Title,
		Abstract:      input.Abstract,
		Keywords:      input.Keywords,
		TopicArea:     input.TopicArea,
		FileURL:       input.FileURL,
		Status:        models.StatusPendingApproval,
		PaymentStatus: models.PaymentUnpaid,
		SubmittedBy:   input.SubmittedBy,
		CreateAt:      now,
	}

	var submitter models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", input.SubmittedBy).First(&submitter).Error; err != nil {
		return nil, nil, err
	}

	var provisioned []ProvisionedAccount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&paper).Error; err != nil {
			return err
		}

		for i, entry := range input.Authors {
			author := models.PaperAuthor{
				PaperID:         paper.PaperID,
				Salutation:      entry.Salutation,
				Name:            entry.Name,
				Email:           entry.Email,
				Institution:     entry.Institution,
				IsCorresponding: entry.IsCorresponding,
				AuthorOrder:     i + 1,
			}
			if err := tx.Create(&author).Error; err != nil {
				return err
			}
			paper.Authors = append(paper.Authors, author)

			if !entry.IsCorresponding || strings.EqualFold(entry.Email, submitter.Email) {
				continue
			}

			account, err := provisionAuthorAccount(tx, entry, now)
			if err != nil {
				return err
			}
			if account != nil {
				provisioned = append(provisioned, *account)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &paper, provisioned, nil
}

// provisionAuthorAccount reuses an existing account matching the author's
// email, or creates one with a generated temporary password.
func provisionAuthorAccount(tx *gorm.DB, entry AuthorInput, now time.Time) (*ProvisionedAccount, error) {
	var existing models.User
	err := tx.Where("email = ? AND delete_at IS NULL", entry.Email).First(&existing).Error
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	plaintext, err := tempCredential()
	if err != nil {
		return nil, err
	}
	hashed, err := hashPassword(plaintext)
	if err != nil {
		return nil, err
	}

	first, last := utils.SplitName(entry.Name)
	user := models.User{
		FirstName:   first,
		LastName:    last,
		Affiliation: entry.Institution,
		Email:       entry.Email,
		Password:    hashed,
		Role:        models.RoleAuthor,
		CreateAt:    &now,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}

	return &ProvisionedAccount{
		UserID:   user.UserID,
		Name:     entry.Name,
		Email:    entry.Email,
		Password: plaintext,
	}, nil
}

// ListPapers returns the papers the user may see, newest first: admins see
// everything, authors their submissions plus corresponding-author email
// matches, reviewers their assigned papers. The email match is
// case-insensitive so the listing agrees with the access guard.
func (s *PaperService) ListPapers(user *models.User) ([]models.Paper, error) {
	query := s.db.Preload("Authors").Order("create_at DESC")
	switch user.Role {
	case models.RoleAdmin:
	case models.RoleAuthor:
		query = query.Where(
			"submitted_by = ? OR paper_id IN (SELECT paper_id FROM paper_authors WHERE is_corresponding = ? AND LOWER(email) = LOWER(?))",
			user.UserID, true, user.Email)
	case models.RoleReviewer:
		query = query.Where(
			"paper_id IN (SELECT paper_id FROM reviewer_assignments WHERE reviewer_id = ?)",
			user.UserID)
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown role %q", user.Role)}
	}

	var papers []models.Paper
	if err := query.Find(&papers).Error; err != nil {
		return nil, err
	}
	return papers, nil
}

// GetPaper loads a paper with the relations the access guard and the
// notification builders need.
func (s *PaperService) GetPaper(paperID int) (*models.Paper, error) {
	var paper models.Paper
	err := s.db.Preload("Authors").Preload("Assignments").
		Where("paper_id = ?", paperID).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// Approve moves a pending paper into the review queue. Approving from any
// other status is a conflict and changes nothing.
func (s *PaperService) Approve(paperID int) (*models.Paper, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, err
	}

	next, err := Transition(paper.Status, ActionApprove)
	if err != nil {
		return nil, err
	}

	if err := updateStatusTx(s.db, paperID, ActionApprove, paper.Status, next); err != nil {
		return nil, err
	}
	paper.Status = next
	return paper, nil
}

// AssignReviewers creates assignment rows for the given reviewers, skipping
// pairs that already exist, and advances waiting papers to UNDER_REVIEW. It
// returns the newly assigned reviewers and whether the status changed.
func (s *PaperService) AssignReviewers(paperID int, reviewerIDs []int) (*models.Paper, []models.User, bool, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, nil, false, err
	}

	wanted := dedupeIDs(reviewerIDs)
	if len(wanted) == 0 {
		return nil, nil, false, &ValidationError{Message: "reviewer list is empty"}
	}

	var reviewers []models.User
	if err := s.db.Where("user_id IN ? AND role = ? AND delete_at IS NULL", wanted, models.RoleReviewer).
		Find(&reviewers).Error; err != nil {
		return nil, nil, false, err
	}
	if len(reviewers) != len(wanted) {
		return nil, nil, false, &ValidationError{Message: "one or more reviewer ids are invalid"}
	}

	assigned := make(map[int]bool, len(paper.Assignments))
	for _, a := range paper.Assignments {
		assigned[a.ReviewerID] = true
	}

	var added []models.User
	statusChanged := false
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, reviewer := range reviewers {
			if assigned[reviewer.UserID] {
				continue
			}
			assignment := models.ReviewerAssignment{
				PaperID:    paperID,
				ReviewerID: reviewer.UserID,
				AssignedAt: now,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			paper.Assignments = append(paper.Assignments, assignment)
			added = append(added, reviewer)
		}

		if next, changed := AdvanceOnReviewActivity(paper.Status); changed {
			moved, err := advanceStatusTx(tx, paperID, paper.Status, next)
			if err != nil {
				return err
			}
			if moved {
				paper.Status = next
				statusChanged = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	return paper, added, statusChanged, nil
}

// UpsertReview records a reviewer's verdict. A second submission from the
// same reviewer overwrites the first row, refreshing its timestamp.
func (s *PaperService) UpsertReview(paperID, reviewerID int, comments, recommendation string) (*models.Paper, *models.Review, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, nil, err
	}

	if !isAssignedReviewer(paper, reviewerID) {
		return nil, nil, ErrNotAssigned
	}

	now := time.Now()
	var review models.Review
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).First(&review).Error
		switch {
		case err == nil:
			review.Comments = comments
			review.Recommendation = recommendation
			review.ReviewedAt = now
			if err := tx.Model(&models.Review{}).
				Where("review_id = ?", review.ReviewID).
				Updates(map[string]interface{}{
					"comments":       comments,
					"recommendation": recommendation,
					"reviewed_at":    now,
				}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				PaperID:        paperID,
				ReviewerID:     reviewerID,
				Comments:       comments,
				Recommendation: recommendation,
				ReviewedAt:     now,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if next, changed := AdvanceOnReviewActivity(paper.Status); changed {
			moved, err := advanceStatusTx(tx, paperID, paper.Status, next)
			if err != nil {
				return err
			}
			if moved {
				paper.Status = next
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paper, &review, nil
}

// SetFinalStatus records the admin decision for a paper.
func (s *PaperService) SetFinalStatus(paperID int, target string) (*models.Paper, error) {
	if err := ValidateFinalStatus(target); err != nil {
		return nil, err
	}

	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, err
	}

	// Re-setting the same decision is a no-op, not a conflict.
	if paper.Status != target {
		if err := updateStatusTx(s.db, paperID, ActionFinalize, paper.Status, target); err != nil {
			return nil, err
		}
	}
	paper.Status = target
	return paper, nil
}

// Resubmit swaps the manuscript of a paper in REVISION_REQUIRED and marks it
// RESUBMITTED. The previous file reference is returned so the caller can
// delete the stored file best-effort. On conflict nothing changes and the
// caller must discard the fresh upload.
func (s *PaperService) Resubmit(paperID int, newFileURL string) (*models.Paper, string, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, "", err
	}

	next, err := Transition(paper.Status, ActionResubmit)
	if err != nil {
		return nil, "", err
	}

	oldFileURL := paper.FileURL
	result := s.db.Model(&models.Paper{}).
		Where("paper_id = ? AND status = ?", paperID, paper.Status).
		Updates(map[string]interface{}{
			"file_url": newFileURL,
			"status":   next,
		})
	if result.Error != nil {
		return nil, "", result.Error
	}
	if result.RowsAffected == 0 {
		return nil, "", staleStatusConflict(s.db, paperID, ActionResubmit)
	}

	paper.FileURL = newFileURL
	paper.Status = next
	return paper, oldFileURL, nil
}

// SetCameraReady replaces the camera-ready file reference and returns the
// previous one, if any, for best-effort cleanup.
func (s *PaperService) SetCameraReady(paperID int, fileURL string) (*models.Paper, string, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, "", err
	}

	var oldURL string
	if paper.CameraReadyURL != nil {
		oldURL = *paper.CameraReadyURL
	}

	err = s.db.Model(&models.Paper{}).
		Where("paper_id = ?", paperID).
		Update("camera_ready_url", fileURL).Error
	if err != nil {
		return nil, "", err
	}

	paper.CameraReadyURL = &fileURL
	return paper, oldURL, nil
}

// UpdatePaymentStatus sets the payment flag tracked on accepted papers.
func (s *PaperService) UpdatePaymentStatus(paperID int, status string) (*models.Paper, error) {
	if status != models.PaymentUnpaid && status != models.PaymentPaid {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid payment status %q", status)}
	}

	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Paper{}).
		Where("paper_id = ?", paperID).
		Update("payment_status", status).Error
	if err != nil {
		return nil, err
	}

	paper.PaymentStatus = status
	return paper, nil
}

// DeletePaper removes the paper and every dependent row in one transaction.
// The loaded paper is returned so the caller can delete stored files and
// notify corresponding authors after the commit.
func (s *PaperService) DeletePaper(paperID int) (*models.Paper, error) {
	paper, err := s.GetPaper(paperID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", paperID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&models.ReviewerAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&models.PaperAuthor{}).Error; err != nil {
			return err
		}
		return tx.Where("paper_id = ?", paperID).Delete(&models.Paper{}).Error
	})
	if err != nil {
		return nil, err
	}
	return paper, nil
}

// AddFeedback appends a message to the paper's discussion thread.
func (s *PaperService) AddFeedback(paperID, userID int, message string) (*models.Feedback, error) {
	feedback := models.Feedback{
		PaperID: paperID,
		UserID:  userID,
		Message: message,
		SentAt:  time.Now(),
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// advanceStatusTx moves the paper from one status to another. It reports
// false when the paper no longer sits at the expected status because another
// request got there first.
func advanceStatusTx(tx *gorm.DB, paperID int, from, to string) (bool, error) {
	result := tx.Model(&models.Paper{}).
		Where("paper_id = ? AND status = ?", paperID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// updateStatusTx is the strict variant: losing the race is a conflict
// reporting the status the paper actually holds.
func updateStatusTx(tx *gorm.DB, paperID int, action Action, from, to string) error {
	moved, err := advanceStatusTx(tx, paperID, from, to)
	if err != nil {
		return err
	}
	if !moved {
		return staleStatusConflict(tx, paperID, action)
	}
	return nil
}

func staleStatusConflict(tx *gorm.DB, paperID int, action Action) error {
	var current models.Paper
	if err := tx.Select("status").Where("paper_id = ?", paperID).Take(&current).Error; err != nil {
		return err
	}
	return &ConflictError{Action: action, Status: current.Status}
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
