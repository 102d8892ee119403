package services

import (
	"errors"
	"testing"

	"conference-management-api/models"
)

var allStatuses = []string{
	models.StatusPendingApproval,
	models.StatusPendingReview,
	models.StatusUnderReview,
	models.StatusAccepted,
	models.StatusRejected,
	models.StatusRevisionRequired,
	models.StatusResubmitted,
}

func TestTransitionApprove(t *testing.T) {
	next, err := Transition(models.StatusPendingApproval, ActionApprove)
	if err != nil {
		t.Fatalf("approve from PENDING_APPROVAL failed: %v", err)
	}
	if next != models.StatusPendingReview {
		t.Fatalf("expected PENDING_REVIEW, got %s", next)
	}

	for _, status := range allStatuses {
		if status == models.StatusPendingApproval {
			continue
		}
		_, err := Transition(status, ActionApprove)
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("approve from %s: expected conflict, got %v", status, err)
		}
		if conflict.Status != status {
			t.Fatalf("conflict should name current status %s, got %s", status, conflict.Status)
		}
	}
}

func TestTransitionResubmit(t *testing.T) {
	next, err := Transition(models.StatusRevisionRequired, ActionResubmit)
	if err != nil {
		t.Fatalf("resubmit from REVISION_REQUIRED failed: %v", err)
	}
	if next != models.StatusResubmitted {
		t.Fatalf("expected RESUBMITTED, got %s", next)
	}

	for _, status := range allStatuses {
		if status == models.StatusRevisionRequired {
			continue
		}
		_, err := Transition(status, ActionResubmit)
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("resubmit from %s: expected conflict, got %v", status, err)
		}
	}
}

func TestTransitionResultsAreValidStatuses(t *testing.T) {
	for action, table := range transitions {
		for from, to := range table {
			if !models.ValidStatus(from) {
				t.Errorf("action %s fires from unknown status %s", action, from)
			}
			if !models.ValidStatus(to) {
				t.Errorf("action %s from %s yields unknown status %s", action, from, to)
			}
		}
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	if _, err := Transition(models.StatusPendingApproval, ActionFeedback); err == nil {
		t.Fatal("expected error for action without a transition table")
	}
}

func TestAdvanceOnReviewActivity(t *testing.T) {
	cases := []struct {
		current string
		want    string
		changed bool
	}{
		{models.StatusPendingReview, models.StatusUnderReview, true},
		{models.StatusResubmitted, models.StatusUnderReview, true},
		{models.StatusPendingApproval, models.StatusPendingApproval, false},
		{models.StatusUnderReview, models.StatusUnderReview, false},
		{models.StatusAccepted, models.StatusAccepted, false},
		{models.StatusRejected, models.StatusRejected, false},
		{models.StatusRevisionRequired, models.StatusRevisionRequired, false},
	}

	for _, tc := range cases {
		got, changed := AdvanceOnReviewActivity(tc.current)
		if got != tc.want || changed != tc.changed {
			t.Errorf("AdvanceOnReviewActivity(%s) = (%s, %v), want (%s, %v)",
				tc.current, got, changed, tc.want, tc.changed)
		}
	}
}

func TestValidateFinalStatus(t *testing.T) {
	for _, status := range []string{models.StatusAccepted, models.StatusRejected, models.StatusRevisionRequired} {
		if err := ValidateFinalStatus(status); err != nil {
			t.Errorf("ValidateFinalStatus(%s) = %v, want nil", status, err)
		}
	}

	for _, status := range []string{models.StatusPendingApproval, models.StatusPendingReview,
		models.StatusUnderReview, models.StatusResubmitted, "accepted", ""} {
		if err := ValidateFinalStatus(status); err == nil {
			t.Errorf("ValidateFinalStatus(%s) should fail", status)
		}
	}
}

func TestApproveIsIdempotentSafe(t *testing.T) {
	// First approve succeeds, second one conflicts at PENDING_REVIEW.
	next, err := Transition(models.StatusPendingApproval, ActionApprove)
	if err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err = Transition(next, ActionApprove)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second approve: expected conflict, got %v", err)
	}
	if conflict.Status != models.StatusPendingReview {
		t.Fatalf("second approve should conflict at PENDING_REVIEW, got %s", conflict.Status)
	}
}
