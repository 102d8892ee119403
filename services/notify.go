package services

import (
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"conference-management-api/config"
	"conference-management-api/models"

	"gorm.io/gorm"
)

// sendMail is swappable in tests so dispatch can run without SMTP.
var sendMail = config.SendMail

// Intent is one pending notification: an in-app row plus a best-effort email.
// Intents are built inside a lifecycle handler but dispatched only after the
// transaction has committed; a failed delivery never rolls anything back.
type Intent struct {
	UserID  int
	Email   string
	Name    string
	Title   string
	Body    string
	Type    string // info|success|warning|error
	PaperID int
}

// NotificationService persists in-app notification rows and fans out email
// asynchronously.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Dispatch stores a notification row per intent with an account, then sends
// the emails in the background. Email failures are logged only.
func (s *NotificationService) Dispatch(intents []Intent) {
	if len(intents) == 0 {
		return
	}

	now := time.Now()
	for _, intent := range intents {
		if intent.UserID == 0 {
			continue
		}
		var relatedPaper *uint
		if intent.PaperID > 0 {
			id := uint(intent.PaperID)
			relatedPaper = &id
		}
		row := models.Notification{
			UserID:         uint(intent.UserID),
			Title:          intent.Title,
			Message:        intent.Body,
			Type:           intent.Type,
			RelatedPaperID: relatedPaper,
			CreateAt:       now,
		}
		if err := s.db.Create(&row).Error; err != nil {
			log.Printf("failed to store notification for user %d: %v", intent.UserID, err)
		}
	}

	go func(batch []Intent) {
		for _, intent := range batch {
			if intent.Email == "" {
				continue
			}
			html := buildFormalEmailHTML(intent.Title, intent.Name, intent.Body)
			sendMailSafe([]string{intent.Email}, intent.Title, html)
		}
	}(intents)
}

// AdminRecipients returns every active admin account.
func (s *NotificationService) AdminRecipients() ([]models.User, error) {
	var admins []models.User
	err := s.db.Where("role = ? AND delete_at IS NULL", models.RoleAdmin).Find(&admins).Error
	return admins, err
}

// AssignedReviewers resolves the user accounts behind a paper's assignments.
func (s *NotificationService) AssignedReviewers(paper *models.Paper) ([]models.User, error) {
	if len(paper.Assignments) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(paper.Assignments))
	for _, a := range paper.Assignments {
		ids = append(ids, a.ReviewerID)
	}
	var reviewers []models.User
	err := s.db.Where("user_id IN ? AND delete_at IS NULL", ids).Find(&reviewers).Error
	return reviewers, err
}

// CorrespondingAuthorIntents builds one intent per corresponding author of
// the paper, resolving accounts by email match so the in-app copy lands on
// the right user. Authors without an account still get the email.
func (s *NotificationService) CorrespondingAuthorIntents(paper *models.Paper, title, body, kind string) []Intent {
	var intents []Intent
	for _, author := range paper.Authors {
		if !author.IsCorresponding {
			continue
		}
		intent := Intent{
			Email:   author.Email,
			Name:    author.Name,
			Title:   title,
			Body:    body,
			Type:    kind,
			PaperID: paper.PaperID,
		}
		var user models.User
		if err := s.db.Where("email = ? AND delete_at IS NULL", author.Email).First(&user).Error; err == nil {
			intent.UserID = user.UserID
		}
		intents = append(intents, intent)
	}
	return intents
}

// SubmissionIntents builds the admin fan-out for a new submission plus the
// credential emails for provisioned corresponding authors. A failed admin
// lookup is logged and never drops the welcome intents.
func (s *NotificationService) SubmissionIntents(paper *models.Paper, submitter *models.User, provisioned []ProvisionedAccount) []Intent {
	admins, err := s.AdminRecipients()
	if err != nil {
		log.Printf("failed to resolve admin recipients: %v", err)
	}

	body := fmt.Sprintf("%s submitted \"%s\" (%s). The paper is waiting for approval.",
		submitter.FullName(), paper.Title, paper.TopicArea)
	intents := UserIntents(admins, "New paper submission", body, "info", paper.PaperID)
	return append(intents, WelcomeIntents(paper, provisioned)...)
}

// UserIntents builds one intent per user with a fixed title and body.
func UserIntents(users []models.User, title, body, kind string, paperID int) []Intent {
	intents := make([]Intent, 0, len(users))
	for _, user := range users {
		intents = append(intents, Intent{
			UserID:  user.UserID,
			Email:   user.Email,
			Name:    user.FullName(),
			Title:   title,
			Body:    body,
			Type:    kind,
			PaperID: paperID,
		})
	}
	return intents
}

// WelcomeIntents builds the credential emails for accounts provisioned during
// submission. These carry a one-time password, so they are email-only.
func WelcomeIntents(paper *models.Paper, accounts []ProvisionedAccount) []Intent {
	intents := make([]Intent, 0, len(accounts))
	for _, account := range accounts {
		body := fmt.Sprintf(
			"An account has been created for you as a corresponding author of \"%s\".\n"+
				"Login email: %s\nTemporary password: %s\n"+
				"Please change your password after your first login.",
			paper.Title, account.Email, account.Password)
		intents = append(intents, Intent{
			UserID:  account.UserID,
			Email:   account.Email,
			Name:    account.Name,
			Title:   "Your conference account",
			Body:    body,
			Type:    "info",
			PaperID: paper.PaperID,
		})
	}
	return intents
}

func sendMailSafe(to []string, subject, html string) {
	if err := sendMail(to, subject, html); err != nil {
		log.Printf("notification email send failed (subject=%q to=%v): %v", subject, to, err)
	}
}

func buildFormalEmailHTML(subject, recipientName, message string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Author"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}
