// Package auth provides sign-up, login, logout, and a session-change
// stream against locally stored accounts, with the structured error codes
// the UI maps to fixed human-readable messages.
package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/model"
)

// Code identifies a structured auth failure.
type Code string

const (
	CodeInvalidEmail    Code = "auth/invalid-email"
	CodeUserNotFound    Code = "auth/user-not-found"
	CodeWrongPassword   Code = "auth/wrong-password"
	CodeEmailInUse      Code = "auth/email-already-in-use"
	CodeWeakPassword    Code = "auth/weak-password"
	CodeTooManyRequests Code = "auth/too-many-requests"
)

// messages maps each code to the message shown to the user.
var messages = map[Code]string{
	CodeInvalidEmail:    "The email address is badly formatted.",
	CodeUserNotFound:    "No user found with this email address.",
	CodeWrongPassword:   "The password is incorrect.",
	CodeEmailInUse:      "This email is already in use.",
	CodeWeakPassword:    "Password should be at least 6 characters.",
	CodeTooManyRequests: "Too many login attempts. Try again later.",
}

// Error is a structured auth failure. Match with errors.As and switch on
// Code; Error() already returns the human-readable message.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	if msg, ok := messages[e.Code]; ok {
		return msg
	}
	return string(e.Code)
}

const (
	minPasswordLen   = 6
	maxLoginFailures = 5
	failureWindow    = 15 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// User is an authenticated account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Service authenticates users and keeps the current session in a token
// file so the CLI stays signed in across runs. Pass the service into
// components explicitly; there is no package-level singleton.
type Service struct {
	db          *sql.DB
	sessionPath string

	mu       sync.Mutex
	failures map[string][]time.Time
	watchers []chan *User
}

// New creates an auth service backed by the given database, persisting
// the session token at sessionPath.
func New(db *sql.DB, sessionPath string) (*Service, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create accounts schema: %w", err)
	}
	return &Service{
		db:          db,
		sessionPath: sessionPath,
		failures:    make(map[string][]time.Time),
	}, nil
}

// SignUp creates an account and signs the new user in.
func (s *Service) SignUp(email, password, displayName string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, &Error{Code: CodeInvalidEmail}
	}
	if len(password) < minPasswordLen {
		return nil, &Error{Code: CodeWeakPassword}
	}

	var existing int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE email = ?`, email).Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		return nil, &Error{Code: CodeEmailInUse}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{ID: model.GenerateID(), Email: email, DisplayName: displayName}
	_, err = s.db.Exec(`
		INSERT INTO accounts (id, email, password_hash, display_name)
		VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, string(hash), user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.writeSession(user); err != nil {
		return nil, err
	}
	s.notify(user)
	return user, nil
}

// Login verifies the password and establishes a session. Repeated
// failures for the same email inside the window are rate-limited.
func (s *Service) Login(email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, &Error{Code: CodeInvalidEmail}
	}
	if s.throttled(email) {
		return nil, &Error{Code: CodeTooManyRequests}
	}

	user := &User{}
	var hash string
	err := s.db.QueryRow(`SELECT id, email, display_name, password_hash FROM accounts WHERE email = ?`,
		email).Scan(&user.ID, &user.Email, &user.DisplayName, &hash)
	if err == sql.ErrNoRows {
		return nil, &Error{Code: CodeUserNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.recordFailure(email)
		return nil, &Error{Code: CodeWrongPassword}
	}

	s.clearFailures(email)
	if err := s.writeSession(user); err != nil {
		return nil, err
	}
	s.notify(user)
	return user, nil
}

// Logout drops the session. Logging out while signed out is not an error.
func (s *Service) Logout() error {
	if err := os.Remove(s.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	s.notify(nil)
	return nil
}

// CurrentUser returns the signed-in user, or nil when signed out.
func (s *Service) CurrentUser() (*User, error) {
	data, err := os.ReadFile(s.sessionPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	// The account may have been removed since the session was written.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE id = ?`, user.ID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	if count == 0 {
		_ = os.Remove(s.sessionPath)
		return nil, nil
	}
	return user, nil
}

// Watch subscribes to session changes. Each login pushes the new user;
// logout pushes nil. The returned func cancels the subscription.
func (s *Service) Watch() (<-chan *User, func()) {
	ch := make(chan *User, 4)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, c := range s.watchers {
			if c == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				close(c)
				return
			}
		}
	}
	return ch, cancel
}

func (s *Service) writeSession(user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *Service) notify(user *User) {
	s.mu.Lock()
	chans := append([]chan *User(nil), s.watchers...)
	s.mu.Unlock()
	for _, ch := range chans {
		select {
		case ch <- user:
		default:
		}
	}
}

func (s *Service) throttled(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-failureWindow)
	var recent []time.Time
	for _, t := range s.failures[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.failures[email] = recent
	return len(recent) >= maxLoginFailures
}

func (s *Service) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[email] = append(s.failures[email], time.Now())
}

func (s *Service) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, email)
}

// IsCode reports whether err is an auth error with the given code.
func IsCode(err error, code Code) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
