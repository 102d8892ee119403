package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"conference-management-api/models"
)

func TestUserIntents(t *testing.T) {
	users := []models.User{
		{UserID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@conf.org"},
		{UserID: 2, FirstName: "Alan", Email: "alan@conf.org"},
	}

	intents := UserIntents(users, "Paper approved", "Your paper moved on.", "success", 7)
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(intents))
	}
	if intents[0].Name != "Ada Lovelace" || intents[0].UserID != 1 || intents[0].PaperID != 7 {
		t.Fatalf("unexpected first intent: %+v", intents[0])
	}
	if intents[1].Name != "Alan" {
		t.Fatalf("expected bare first name when last name is empty, got %q", intents[1].Name)
	}
}

func TestWelcomeIntents(t *testing.T) {
	paper := &models.Paper{PaperID: 7, Title: "A Study of Things"}
	accounts := []ProvisionedAccount{
		{UserID: 77, Name: "Bob Jones", Email: "bob@lab.org", Password: "Temp1234"},
	}

	intents := WelcomeIntents(paper, accounts)
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	intent := intents[0]
	if intent.UserID != 77 || intent.Email != "bob@lab.org" || intent.PaperID != 7 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if !strings.Contains(intent.Body, "Temp1234") {
		t.Error("welcome body must carry the temporary password")
	}
	if !strings.Contains(intent.Body, "A Study of Things") {
		t.Error("welcome body must name the paper")
	}
}

func TestCorrespondingAuthorIntents(t *testing.T) {
	paper := &models.Paper{
		PaperID: 7,
		Authors: []models.PaperAuthor{
			{Name: "Alice", Email: "alice@uni.edu", IsCorresponding: true},
			{Name: "Carol", Email: "carol@uni.edu", IsCorresponding: false},
			{Name: "Bob", Email: "bob@lab.org", IsCorresponding: true},
		},
	}

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .users. WHERE email = \\?"),
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{{int64(2), "alice@uni.edu"}},
		},
		// Bob has no account yet; he still gets the email-only intent.
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .users. WHERE email = \\?"),
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	intents := NewNotificationService(db).CorrespondingAuthorIntents(paper, "Decision", "Accepted.", "success")
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents for corresponding authors, got %d", len(intents))
	}
	if intents[0].UserID != 2 {
		t.Fatalf("expected alice resolved to user 2, got %d", intents[0].UserID)
	}
	if intents[1].UserID != 0 || intents[1].Email != "bob@lab.org" {
		t.Fatalf("expected email-only intent for bob, got %+v", intents[1])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestSubmissionIntents(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .users. WHERE role = \\?"),
			columns: []string{"user_id", "first_name", "email", "role"},
			rows: [][]driver.Value{
				{int64(1), "Ada", "admin@conf.org", models.RoleAdmin},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	paper := &models.Paper{PaperID: 7, Title: "A Study of Things", TopicArea: "Systems"}
	submitter := &models.User{UserID: 2, FirstName: "Alice", Email: "alice@uni.edu"}
	provisioned := []ProvisionedAccount{
		{UserID: 77, Name: "Bob Jones", Email: "bob@lab.org", Password: "Temp1234"},
	}

	intents := NewNotificationService(db).SubmissionIntents(paper, submitter, provisioned)
	if len(intents) != 2 {
		t.Fatalf("expected admin intent plus welcome intent, got %d", len(intents))
	}
	if intents[0].Email != "admin@conf.org" || intents[1].Email != "bob@lab.org" {
		t.Fatalf("unexpected recipients: %+v", intents)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestSubmissionIntentsSurviveAdminLookupFailure(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .users. WHERE role = \\?"),
			err:     errors.New("connection refused"),
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	paper := &models.Paper{PaperID: 7, Title: "A Study of Things", TopicArea: "Systems"}
	submitter := &models.User{UserID: 2, FirstName: "Alice", Email: "alice@uni.edu"}
	provisioned := []ProvisionedAccount{
		{UserID: 77, Name: "Bob Jones", Email: "bob@lab.org", Password: "Temp1234"},
	}

	intents := NewNotificationService(db).SubmissionIntents(paper, submitter, provisioned)
	if len(intents) != 1 {
		t.Fatalf("welcome intents must survive a failed admin lookup, got %d intents", len(intents))
	}
	if intents[0].Email != "bob@lab.org" || !strings.Contains(intents[0].Body, "Temp1234") {
		t.Fatalf("unexpected surviving intent: %+v", intents[0])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchStoresRowsAndSendsEmails(t *testing.T) {
	sent := make(chan string, 4)
	origSend := sendMail
	sendMail = func(to []string, subject, html string) error {
		sent <- to[0]
		return nil
	}
	defer func() { sendMail = origSend }()

	// Only intents with an account get a row; only intents with an email
	// address get a message.
	steps := []*queryStep{
		{kind: kindExec, pattern: regexp.MustCompile("INSERT INTO .notifications."), result: scriptedResult{lastInsertID: 1, rowsAffected: 1}},
		{kind: kindExec, pattern: regexp.MustCompile("INSERT INTO .notifications."), result: scriptedResult{lastInsertID: 2, rowsAffected: 1}},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	NewNotificationService(db).Dispatch([]Intent{
		{UserID: 5, Email: "a@conf.org", Name: "A", Title: "T", Body: "B", Type: "info", PaperID: 7},
		{UserID: 0, Email: "b@lab.org", Name: "B", Title: "T", Body: "B", Type: "info", PaperID: 7},
		{UserID: 6, Name: "C", Title: "T", Body: "B", Type: "info", PaperID: 7},
	})

	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case addr := <-sent:
			got[addr] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for email dispatch")
		}
	}
	if !got["a@conf.org"] || !got["b@lab.org"] {
		t.Fatalf("unexpected email recipients: %v", got)
	}

	select {
	case addr := <-sent:
		t.Fatalf("unexpected extra email to %s", addr)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAssignedReviewers(t *testing.T) {
	paper := &models.Paper{
		PaperID: 7,
		Assignments: []models.ReviewerAssignment{
			{PaperID: 7, ReviewerID: 3},
			{PaperID: 7, ReviewerID: 4},
		},
	}

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM .users. WHERE user_id IN"),
			columns: []string{"user_id", "email", "role"},
			rows: [][]driver.Value{
				{int64(3), "rita@conf.org", models.RoleReviewer},
				{int64(4), "ravi@conf.org", models.RoleReviewer},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	reviewers, err := NewNotificationService(db).AssignedReviewers(paper)
	if err != nil {
		t.Fatalf("AssignedReviewers returned error: %v", err)
	}
	if len(reviewers) != 2 {
		t.Fatalf("expected 2 reviewers, got %d", len(reviewers))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAssignedReviewersNoAssignments(t *testing.T) {
	reviewers, err := NewNotificationService(nil).AssignedReviewers(&models.Paper{PaperID: 7})
	if err != nil {
		t.Fatalf("AssignedReviewers returned error: %v", err)
	}
	if reviewers != nil {
		t.Fatalf("expected no reviewers, got %v", reviewers)
	}
}

func TestBuildFormalEmailHTML(t *testing.T) {
	html := buildFormalEmailHTML("Decision <final>", "Alice & Bob", "Line one.\nLine two.")

	if !strings.Contains(html, "Decision &lt;final&gt;") {
		t.Error("subject must be escaped")
	}
	if !strings.Contains(html, "Dear Alice &amp; Bob,") {
		t.Error("greeting must be escaped")
	}
	if !strings.Contains(html, "Line one.<br />Line two.") {
		t.Error("newlines must become line breaks")
	}

	fallback := buildFormalEmailHTML("Subject", "   ", "Body")
	if !strings.Contains(fallback, "Dear Author,") {
		t.Error("blank recipient name must fall back to a generic greeting")
	}
}
