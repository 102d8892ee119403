package services

import (
	"strings"

	"conference-management-api/models"
)

// AccessGuard decides whether a user may see or act on a specific paper.
// Every lifecycle handler consults the same guard instead of doing ad-hoc
// role checks. Decisions are made over the paper's preloaded Authors and
// Assignments so the guard needs no database access of its own.
type AccessGuard interface {
	CanView(paper *models.Paper, user *models.User) bool
	CanAct(action Action, paper *models.Paper, user *models.User) bool
}

type accessGuard struct{}

// NewAccessGuard returns the default role/ownership/assignment guard.
func NewAccessGuard() AccessGuard {
	return accessGuard{}
}

func (accessGuard) CanView(paper *models.Paper, user *models.User) bool {
	if paper == nil || user == nil {
		return false
	}
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAuthor:
		return isOwningAuthor(paper, user)
	case models.RoleReviewer:
		return isAssignedReviewer(paper, user.UserID)
	}
	return false
}

func (g accessGuard) CanAct(action Action, paper *models.Paper, user *models.User) bool {
	if paper == nil || user == nil {
		return false
	}
	switch action {
	case ActionApprove, ActionAssign, ActionFinalize, ActionDelete:
		return user.Role == models.RoleAdmin
	case ActionReview:
		return user.Role == models.RoleReviewer && isAssignedReviewer(paper, user.UserID)
	case ActionResubmit:
		// Only the submitting author may resubmit, not corresponding co-authors.
		return user.Role == models.RoleAuthor && paper.SubmittedBy == user.UserID
	case ActionCamera:
		return user.Role == models.RoleAuthor && isOwningAuthor(paper, user)
	case ActionFeedback, ActionView:
		return g.CanView(paper, user)
	}
	return false
}

// isOwningAuthor reports whether the user submitted the paper or matches a
// corresponding-author entry by email. The email match is a deliberate
// business rule: any account sharing a corresponding author's email gains
// access to the paper.
func isOwningAuthor(paper *models.Paper, user *models.User) bool {
	if paper.SubmittedBy == user.UserID {
		return true
	}
	for _, author := range paper.Authors {
		if author.IsCorresponding && strings.EqualFold(author.Email, user.Email) {
			return true
		}
	}
	return false
}

func isAssignedReviewer(paper *models.Paper, userID int) bool {
	for _, assignment := range paper.Assignments {
		if assignment.ReviewerID == userID {
			return true
		}
	}
	return false
}
