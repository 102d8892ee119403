package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@uni.edu", "bob.jones+conf@lab.co.uk", "x_1@a-b.org"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{"", "alice", "alice@", "@uni.edu", "alice@uni", "a b@uni.edu"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("longenough"); !ok {
		t.Error("8+ character password should pass")
	}
	if ok, msg := ValidatePassword("short"); ok || msg == "" {
		t.Error("short password should fail with a message")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeInput = %q", got)
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" systems ", "Systems", "", "ml", "\x00", "ML", "databases"})
	want := "systems, ml, databases"
	if got != want {
		t.Errorf("NormalizeKeywords = %q, want %q", got, want)
	}
}
