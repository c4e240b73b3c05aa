package auth

import (
	"path/filepath"
	"testing"

	"taskdeck/internal/store"
)

func setupTestAuth(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	svc, err := New(st.DB, filepath.Join(dir, "session"))
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	return svc
}

func TestSignUpAndLogin(t *testing.T) {
	svc := setupTestAuth(t)

	user, err := svc.SignUp("sandra.w@example.com", "secret1", "Sandra")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	if user.ID == "" || user.Email != "sandra.w@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	// Sign-up establishes a session
	current, err := svc.CurrentUser()
	if err != nil {
		t.Fatalf("failed to read session: %v", err)
	}
	if current == nil || current.ID != user.ID {
		t.Errorf("session should hold the new user, got %+v", current)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("failed to log out: %v", err)
	}
	current, _ = svc.CurrentUser()
	if current != nil {
		t.Errorf("expected signed-out session, got %+v", current)
	}

	logged, err := svc.Login("sandra.w@example.com", "secret1")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("login returned wrong user: %+v", logged)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := setupTestAuth(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     Code
	}{
		{"malformed email", "not-an-email", "secret1", CodeInvalidEmail},
		{"short password", "a@b.co", "12345", CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(tt.email, tt.password, "")
			if !IsCode(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := setupTestAuth(t)

	if _, err := svc.SignUp("dup@example.com", "secret1", ""); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	_, err := svc.SignUp("dup@example.com", "other-pass", "")
	if !IsCode(err, CodeEmailInUse) {
		t.Errorf("expected %s, got %v", CodeEmailInUse, err)
	}

	// Case-insensitive match
	_, err = svc.SignUp("DUP@example.com", "other-pass", "")
	if !IsCode(err, CodeEmailInUse) {
		t.Errorf("expected %s for upper-cased email, got %v", CodeEmailInUse, err)
	}
}

func TestLoginErrors(t *testing.T) {
	svc := setupTestAuth(t)

	if _, err := svc.SignUp("sandra@example.com", "secret1", ""); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	_ = svc.Logout()

	_, err := svc.Login("ghost@example.com", "whatever")
	if !IsCode(err, CodeUserNotFound) {
		t.Errorf("expected %s, got %v", CodeUserNotFound, err)
	}

	_, err = svc.Login("sandra@example.com", "wrong")
	if !IsCode(err, CodeWrongPassword) {
		t.Errorf("expected %s, got %v", CodeWrongPassword, err)
	}

	// A failed login leaves the session signed out
	if current, _ := svc.CurrentUser(); current != nil {
		t.Errorf("failed login must not create a session, got %+v", current)
	}
}

func TestLoginThrottled(t *testing.T) {
	svc := setupTestAuth(t)

	if _, err := svc.SignUp("sandra@example.com", "secret1", ""); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	_ = svc.Logout()

	for i := 0; i < 5; i++ {
		_, _ = svc.Login("sandra@example.com", "wrong")
	}

	// Even the correct password is rejected while throttled
	_, err := svc.Login("sandra@example.com", "secret1")
	if !IsCode(err, CodeTooManyRequests) {
		t.Errorf("expected %s, got %v", CodeTooManyRequests, err)
	}
}

func TestWatchSessionChanges(t *testing.T) {
	svc := setupTestAuth(t)

	ch, cancel := svc.Watch()
	defer cancel()

	user, err := svc.SignUp("sandra@example.com", "secret1", "Sandra")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	got := <-ch
	if got == nil || got.ID != user.ID {
		t.Errorf("watch should deliver the new session, got %+v", got)
	}

	_ = svc.Logout()
	if got := <-ch; got != nil {
		t.Errorf("watch should deliver nil on logout, got %+v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	err := &Error{Code: CodeWrongPassword}
	if err.Error() != "The password is incorrect." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
