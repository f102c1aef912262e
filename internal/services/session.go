package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

const (
	msgLoginSucceeded     = "Access Granted! Welcome back."
	msgInvalidCredentials = "Invalid credentials. Please try again."
	msgConnectionFailed   = "Connection failed. Please try again."
	backendBadCredentials = "Incorrect username or password"
)

// Session signs the operator in and out of the backend
type Session struct {
	auth     repository.AuthRepository
	creds    repository.CredentialStore
	notifier Notifier

	mu   sync.Mutex
	user *models.User

	screens []Resetter
}

func NewSession(auth repository.AuthRepository, creds repository.CredentialStore, notifier Notifier) *Session {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Session{auth: auth, creds: creds, notifier: notifier}
}

// Login authenticates and, on success, leaves the token in the credential store
func (s *Session) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return s.fail("Username and password are required",
			fmt.Errorf("%w: username and password are required", ErrInvalidForm))
	}

	if _, err := s.auth.Authenticate(ctx, username, password); err != nil {
		return s.fail(loginFailureMessage(err), fmt.Errorf("login %s: %w", username, err))
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.notifier.Success(msgLoginSucceeded)
	return nil
}

func (s *Session) fail(message string, err error) error {
	s.notifier.Failure(message)
	return &NoticeError{Message: message, Err: err}
}

func loginFailureMessage(err error) string {
	msg := repository.Message(err, msgConnectionFailed)
	if msg == backendBadCredentials {
		return msgInvalidCredentials
	}
	return "Error: " + msg
}

// ResetOnLogout registers screens whose state is dropped on Logout.
// Call before the session is used.
func (s *Session) ResetOnLogout(screens ...Resetter) {
	s.screens = append(s.screens, screens...)
}

// Logout clears the credential and every registered screen; later protected
// calls fail as ordinary errors
func (s *Session) Logout() {
	s.creds.Clear()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	for _, screen := range s.screens {
		screen.Reset()
	}
	log.Println("👋 Logged out")
}

func (s *Session) Authenticated() bool {
	return s.creds.Token() != ""
}

// CurrentUser returns the signed-in operator, cached until the next login or logout
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	cached := s.user
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	if !s.Authenticated() {
		return nil, errors.New("not signed in")
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}
