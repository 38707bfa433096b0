package session

import (
	"sync"

	"custodash/api"
)

// CredentialStore holds the AWS credentials entered for the lifetime of the
// process. Nothing is persisted and nothing is validated here; validation
// happens through the API client before callers store a value.
type CredentialStore struct {
	mu    sync.RWMutex
	creds *api.Credentials
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Set replaces the held credentials unconditionally.
func (s *CredentialStore) Set(creds api.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
}

// Clear resets the store to empty.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
}

// Get returns the held credentials and whether any are set.
func (s *CredentialStore) Get() (api.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return api.Credentials{}, false
	}
	return *s.creds, true
}
