package repository

import "sync"

// SessionCredentials is a process-wide, in-memory CredentialStore.
// The zero value is an empty store.
type SessionCredentials struct {
	mu    sync.RWMutex
	token string
}

// NewSessionCredentials creates a store, optionally pre-loaded with a token
func NewSessionCredentials(token string) *SessionCredentials {
	return &SessionCredentials{token: token}
}

func (c *SessionCredentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *SessionCredentials) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *SessionCredentials) Clear() {
	c.SetToken("")
}
