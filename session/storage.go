package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"custodash/api"
)

const sessionFileName = "session"

// Storage keys, kept compatible with the browser dashboard this tool
// replaces.
const (
	tokenKey = "sso_token"
	userKey  = "sso_user"
)

// Storage persists the SSO token and user between runs.
type Storage struct {
	path string
}

// NewStorage creates a Storage backed by ~/.config/custodash/session.
func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "custodash")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &Storage{path: filepath.Join(configDir, sessionFileName)}, nil
}

// NewStorageAt creates a Storage at an explicit path.
func NewStorageAt(path string) *Storage {
	return &Storage{path: path}
}

// Save persists the token and user pair.
func (s *Storage) Save(token string, user api.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	cfg := ini.Empty()
	section := cfg.Section(ini.DefaultSection)
	section.Key(tokenKey).SetValue(token)
	section.Key(userKey).SetValue(string(userJSON))

	if err := cfg.SaveTo(s.path); err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}

	return os.Chmod(s.path, 0600)
}

// Load returns the stored token and user. A missing or incomplete file
// yields an empty token and nil user without error.
func (s *Storage) Load() (string, *api.User, error) {
	cfg, err := ini.Load(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("failed to load session file: %w", err)
	}

	section := cfg.Section(ini.DefaultSection)
	token := section.Key(tokenKey).String()
	userJSON := section.Key(userKey).String()
	if token == "" || userJSON == "" {
		return "", nil, nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return "", nil, fmt.Errorf("failed to parse stored user: %w", err)
	}

	return token, &user, nil
}

// Token returns the stored token, or "" when none exists. Implements
// api.TokenStore.
func (s *Storage) Token() string {
	token, _, err := s.Load()
	if err != nil {
		return ""
	}
	return token
}

// Clear removes both stored keys. Implements api.TokenStore.
func (s *Storage) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
