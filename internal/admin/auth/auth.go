// Package auth guards the admin dashboard. Authentication is a single
// shared passphrase; a successful login mints a bearer token with a
// sliding expiry.
package auth

import (
	"crypto/subtle"
	"sync"
	"time"

	apperrors "ribobook/pkg/errors"
	"ribobook/pkg/logger"

	"github.com/google/uuid"
)

const WrongPassphraseMessage = "Incorrect Password!"

const janitorInterval = time.Minute

// Authenticator checks an admin credential.
type Authenticator interface {
	Authenticate(passphrase string) error
}

type passphraseAuthenticator struct {
	passphrase string
}

func NewPassphraseAuthenticator(passphrase string) Authenticator {
	return &passphraseAuthenticator{passphrase: passphrase}
}

func (a *passphraseAuthenticator) Authenticate(passphrase string) error {
	if subtle.ConstantTimeCompare([]byte(passphrase), []byte(a.passphrase)) != 1 {
		return apperrors.Unauthorized(WrongPassphraseMessage)
	}
	return nil
}

type session struct {
	expiresAt time.Time
}

// SessionManager tracks live admin sessions in memory. Tokens are
// opaque UUIDs; every validated request slides the expiry forward.
// Sessions do not survive a restart, which forces a fresh login.
type SessionManager struct {
	ttl time.Duration
	log *logger.Logger
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]session

	stopOnce sync.Once
	stop     chan struct{}
}

func NewSessionManager(ttl time.Duration, log *logger.Logger) *SessionManager {
	m := &SessionManager{
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]session),
		stop:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Open mints a new session token.
func (m *SessionManager) Open() string {
	token := uuid.NewString()

	m.mu.Lock()
	m.sessions[token] = session{expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	m.log.Info("Admin session opened")
	return token
}

// Validate reports whether the token belongs to a live session and, if
// so, slides its expiry forward.
func (m *SessionManager) Validate(token string) bool {
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return false
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, token)
		return false
	}
	m.sessions[token] = session{expiresAt: m.now().Add(m.ttl)}
	return true
}

// Close ends the session. Unknown tokens are ignored.
func (m *SessionManager) Close(token string) {
	m.mu.Lock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if ok {
		m.log.Info("Admin session closed")
	}
}

// ActiveSessions counts sessions that have not expired yet.
func (m *SessionManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	count := 0
	for _, s := range m.sessions {
		if !now.After(s.expiresAt) {
			count++
		}
	}
	return count
}

// Stop shuts down the expiry janitor. Safe to call more than once.
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

func (m *SessionManager) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *SessionManager) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, token)
		}
	}
}
