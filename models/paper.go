package models

import "time"

// Paper status values. A paper starts at PENDING_APPROVAL and only moves
// through the transitions encoded in services.Transition.
const (
	StatusPendingApproval  = "PENDING_APPROVAL"
	StatusPendingReview    = "PENDING_REVIEW"
	StatusUnderReview      = "UNDER_REVIEW"
	StatusAccepted         = "ACCEPTED"
	StatusRejected         = "REJECTED"
	StatusRevisionRequired = "REVISION_REQUIRED"
	StatusResubmitted      = "RESUBMITTED"
)

// Payment status values tracked on accepted papers.
const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// Review recommendation values.
const (
	RecommendAccept        = "ACCEPT"
	RecommendReject        = "REJECT"
	RecommendMinorRevision = "MINOR_REVISION"
	RecommendMajorRevision = "MAJOR_REVISION"
)

// ValidStatus reports whether status belongs to the fixed status set.
func ValidStatus(status string) bool {
	switch status {
	case StatusPendingApproval, StatusPendingReview, StatusUnderReview,
		StatusAccepted, StatusRejected, StatusRevisionRequired, StatusResubmitted:
		return true
	}
	return false
}

// ValidRecommendation reports whether r is a known review recommendation.
func ValidRecommendation(r string) bool {
	switch r {
	case RecommendAccept, RecommendReject, RecommendMinorRevision, RecommendMajorRevision:
		return true
	}
	return false
}

type Paper struct {
	PaperID        int       `gorm:"primaryKey;column:paper_id" json:"paper_id"`
	Title          string    `gorm:"column:title" json:"title"`
	Abstract       string    `gorm:"column:abstract" json:"abstract"`
	Keywords       string    `gorm:"column:keywords" json:"keywords"`
	TopicArea      string    `gorm:"column:topic_area" json:"topic_area"`
	FileURL        string    `gorm:"column:file_url" json:"file_url"`
	CameraReadyURL *string   `gorm:"column:camera_ready_url" json:"camera_ready_url,omitempty"`
	Status         string    `gorm:"column:status" json:"status"`
	PaymentStatus  string    `gorm:"column:payment_status" json:"payment_status"`
	SubmittedBy    int       `gorm:"column:submitted_by" json:"submitted_by"`
	CreateAt       time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Submitter   *User                `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
	Authors     []PaperAuthor        `gorm:"foreignKey:PaperID" json:"authors,omitempty"`
	Assignments []ReviewerAssignment `gorm:"foreignKey:PaperID" json:"assignments,omitempty"`
	Reviews     []Review             `gorm:"foreignKey:PaperID" json:"reviews,omitempty"`
	Feedback    []Feedback           `gorm:"foreignKey:PaperID" json:"feedback,omitempty"`
}

// PaperAuthor is a structured co-author entry attached to a paper.
// Corresponding authors receive notifications and gain access by email match.
type PaperAuthor struct {
	AuthorID        int    `gorm:"primaryKey;column:author_id" json:"author_id"`
	PaperID         int    `gorm:"column:paper_id" json:"paper_id"`
	Salutation      string `gorm:"column:salutation" json:"salutation"`
	Name            string `gorm:"column:name" json:"name"`
	Email           string `gorm:"column:email" json:"email"`
	Institution     string `gorm:"column:institution" json:"institution"`
	IsCorresponding bool   `gorm:"column:is_corresponding" json:"is_corresponding"`
	AuthorOrder     int    `gorm:"column:author_order" json:"author_order"`
}

// ReviewerAssignment grants a reviewer visibility and review rights on one
// paper. At most one row exists per (paper, reviewer) pair.
type ReviewerAssignment struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	PaperID      int       `gorm:"column:paper_id;uniqueIndex:idx_paper_reviewer" json:"paper_id"`
	ReviewerID   int       `gorm:"column:reviewer_id;uniqueIndex:idx_paper_reviewer" json:"reviewer_id"`
	AssignedAt   time.Time `gorm:"column:assigned_at" json:"assigned_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// Review is one reviewer's verdict on one paper. A second submission from the
// same reviewer replaces the first in place.
type Review struct {
	ReviewID       int       `gorm:"primaryKey;column:review_id" json:"review_id"`
	PaperID        int       `gorm:"column:paper_id;uniqueIndex:idx_review_paper_reviewer" json:"paper_id"`
	ReviewerID     int       `gorm:"column:reviewer_id;uniqueIndex:idx_review_paper_reviewer" json:"reviewer_id"`
	Comments       string    `gorm:"column:comments" json:"comments"`
	Recommendation string    `gorm:"column:recommendation" json:"recommendation"`
	ReviewedAt     time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// Feedback is an append-only message on a paper's discussion thread.
type Feedback struct {
	FeedbackID int       `gorm:"primaryKey;column:feedback_id" json:"feedback_id"`
	PaperID    int       `gorm:"column:paper_id" json:"paper_id"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	Message    string    `gorm:"column:message" json:"message"`
	SentAt     time.Time `gorm:"column:sent_at" json:"sent_at"`

	Sender *User `gorm:"foreignKey:UserID" json:"sender,omitempty"`
}

// TableName overrides
func (Paper) TableName() string {
	return "papers"
}

func (PaperAuthor) TableName() string {
	return "paper_authors"
}

func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}

func (Review) TableName() string {
	return "reviews"
}

func (Feedback) TableName() string {
	return "feedback"
}
