package services

import (
	"fmt"

	"conference-management-api/models"
)

// Action identifies a role-gated lifecycle action on a paper.
type Action string

const (
	ActionView     Action = "view"
	ActionApprove  Action = "approve"
	ActionAssign   Action = "assign_reviewers"
	ActionReview   Action = "submit_review"
	ActionFinalize Action = "set_final_status"
	ActionResubmit Action = "resubmit"
	ActionFeedback Action = "submit_feedback"
	ActionCamera   Action = "upload_camera_ready"
	ActionDelete   Action = "delete"
)

// ConflictError reports a lifecycle action attempted from a status that does
// not allow it. Controllers map it to HTTP 409.
type ConflictError struct {
	Action Action
	Status string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s paper in status %s", e.Action, e.Status)
}

// ValidationError reports caller-supplied input a service rejected.
// Controllers map it to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// transitions is the authoritative table of status-gated actions. An action
// absent from the table for the paper's current status is a conflict.
var transitions = map[Action]map[string]string{
	ActionApprove: {
		models.StatusPendingApproval: models.StatusPendingReview,
	},
	ActionResubmit: {
		models.StatusRevisionRequired: models.StatusResubmitted,
	},
}

// Transition resolves the status a paper moves to when action fires from
// current. Illegal combinations return a *ConflictError and leave the caller
// with no state change to apply.
func Transition(current string, action Action) (string, error) {
	table, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("action %s has no status transition", action)
	}
	next, ok := table[current]
	if !ok {
		return "", &ConflictError{Action: action, Status: current}
	}
	if !models.ValidStatus(next) {
		return "", fmt.Errorf("transition %s from %s yields unknown status %s", action, current, next)
	}
	return next, nil
}

// AdvanceOnReviewActivity returns the status a paper moves to when reviewers
// are assigned or a review is recorded, and whether the status changed.
// Assignment and review are permitted from any status; only papers waiting
// for review activity advance to UNDER_REVIEW.
func AdvanceOnReviewActivity(current string) (string, bool) {
	switch current {
	case models.StatusPendingReview, models.StatusResubmitted:
		return models.StatusUnderReview, true
	}
	return current, false
}

// ValidateFinalStatus checks the target of an admin decision. Only the three
// decision statuses may be set directly.
func ValidateFinalStatus(target string) error {
	switch target {
	case models.StatusAccepted, models.StatusRejected, models.StatusRevisionRequired:
		return nil
	}
	return &ValidationError{Message: fmt.Sprintf("invalid final status %q", target)}
}
