package auth

import (
	"testing"
	"time"

	apperrors "ribobook/pkg/errors"
	"ribobook/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestPassphraseAuthenticator(t *testing.T) {
	a := NewPassphraseAuthenticator("admin123")

	if err := a.Authenticate("admin123"); err != nil {
		t.Fatalf("expected correct passphrase accepted, got %v", err)
	}

	err := a.Authenticate("letmein")
	if err == nil {
		t.Fatalf("expected wrong passphrase rejected")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %s", appErr.Code)
	}
	if appErr.Message != "Incorrect Password!" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}

	if err := a.Authenticate(""); err == nil {
		t.Errorf("expected empty passphrase rejected")
	}
}

func newTestManager(ttl time.Duration) (*SessionManager, *time.Time) {
	m := NewSessionManager(ttl, testLogger())
	current := time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)
	m.now = func() time.Time { return current }
	return m, &current
}

func TestSessionLifecycle(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)
	defer m.Stop()

	token := m.Open()
	if token == "" {
		t.Fatalf("expected a token")
	}
	if !m.Validate(token) {
		t.Errorf("fresh token must validate")
	}
	if m.ActiveSessions() != 1 {
		t.Errorf("expected 1 active session, got %d", m.ActiveSessions())
	}

	m.Close(token)
	if m.Validate(token) {
		t.Errorf("closed token must not validate")
	}
	if m.ActiveSessions() != 0 {
		t.Errorf("expected 0 active sessions, got %d", m.ActiveSessions())
	}
}

func TestValidate_RejectsUnknownAndEmpty(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)
	defer m.Stop()

	if m.Validate("") {
		t.Errorf("empty token must not validate")
	}
	if m.Validate("no-such-token") {
		t.Errorf("unknown token must not validate")
	}
}

func TestValidate_ExpiryAndSliding(t *testing.T) {
	m, clock := newTestManager(30 * time.Minute)
	defer m.Stop()

	token := m.Open()

	// 20 minutes in: still valid, and validation slides the window.
	*clock = clock.Add(20 * time.Minute)
	if !m.Validate(token) {
		t.Fatalf("token should still be valid")
	}

	// Another 20 minutes: inside the slid window.
	*clock = clock.Add(20 * time.Minute)
	if !m.Validate(token) {
		t.Fatalf("sliding expiry should keep the token alive")
	}

	// 31 minutes idle: expired.
	*clock = clock.Add(31 * time.Minute)
	if m.Validate(token) {
		t.Errorf("idle token must expire")
	}
	if m.ActiveSessions() != 0 {
		t.Errorf("expired session must not count as active")
	}
}

func TestEvictExpired(t *testing.T) {
	m, clock := newTestManager(time.Minute)
	defer m.Stop()

	m.Open()
	m.Open()
	*clock = clock.Add(2 * time.Minute)

	m.evictExpired()

	m.mu.Lock()
	remaining := len(m.sessions)
	m.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected all sessions evicted, got %d", remaining)
	}
}
