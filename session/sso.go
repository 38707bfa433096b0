package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"custodash/api"
)

// Permissions checked by views before offering an action.
const (
	PermissionRead      = "read"
	PermissionRunPolicy = "run_policy"
)

// Demo identity used when demo mode is enabled and the backend cannot
// produce a real login URL.
const demoToken = "demo-token-123"

func demoUser(provider string) api.User {
	return api.User{
		ID:       "user-123",
		Email:    "user@example.com",
		Name:     "Demo User",
		Role:     "admin",
		Provider: provider,
	}
}

// authAPI is the slice of the API client the manager depends on.
type authAPI interface {
	SSOConfig(ctx context.Context) (api.SSOConfig, error)
	CurrentUser(ctx context.Context) (*api.User, error)
	SSOLoginURL(ctx context.Context, provider string) (string, error)
	ExchangeSSOToken(ctx context.Context, code, provider string) (*api.SSOTokenResponse, error)
}

// LoginRedirect tells the caller how to continue an initiated SSO login.
// Either URL should be opened in the browser, or (demo mode only) a local
// demo session was already established for User.
type LoginRedirect struct {
	URL  string
	Demo bool
	User *api.User
}

// Manager owns the SSO session lifecycle: config fetch, stored-token
// revalidation on startup, login, logout, and the role/permission check.
type Manager struct {
	client   authAPI
	storage  *Storage
	demoMode bool

	mu            sync.RWMutex
	config        api.SSOConfig
	user          *api.User
	authenticated bool
	loading       bool
}

// NewManager creates a Manager. The session is considered loading until
// Initialize resolves.
func NewManager(client authAPI, storage *Storage, demoMode bool) *Manager {
	return &Manager{
		client:   client,
		storage:  storage,
		demoMode: demoMode,
		config:   api.DefaultSSOConfig(),
		loading:  true,
	}
}

// Initialize fetches the SSO config and revalidates any stored session.
// A failed config fetch falls back to the default config instead of
// failing initialization.
func (m *Manager) Initialize(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	cfg, err := m.client.SSOConfig(ctx)
	if err != nil {
		logrus.WithError(err).Warnln("Failed to load SSO configuration, using defaults")
		cfg = api.DefaultSSOConfig()
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	token, user, err := m.storage.Load()
	if err != nil {
		logrus.WithError(err).Warnln("Failed to read stored session")
		return
	}
	if token == "" || user == nil {
		return
	}

	// Revalidate the stored token against the backend. CurrentUser clears
	// the stored token itself when the backend answers 401.
	current, err := m.client.CurrentUser(ctx)
	if err != nil || current == nil {
		if err != nil {
			logrus.WithError(err).Warnln("Failed to verify stored session")
		}
		if clearErr := m.storage.Clear(); clearErr != nil {
			logrus.WithError(clearErr).Warnln("Failed to clear stored session")
		}
		return
	}

	m.mu.Lock()
	m.user = current
	m.authenticated = true
	m.mu.Unlock()
}

// Config returns the SSO configuration in effect.
func (m *Manager) Config() api.SSOConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Loading reports whether the startup revalidation is still pending.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Authenticated reports whether an SSO session is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// LoginWithSSO adopts a token response as the active session, persisting
// the token and user pair.
func (m *Manager) LoginWithSSO(resp *api.SSOTokenResponse) (*api.User, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}

	if err := m.storage.Save(resp.AccessToken, resp.User); err != nil {
		return nil, err
	}

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.authenticated = true
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"user":     resp.User.Email,
		"provider": resp.User.Provider,
	}).Infoln("SSO session established")

	return &user, nil
}

// Logout clears the persisted pair and marks the session unauthenticated.
func (m *Manager) Logout() error {
	err := m.storage.Clear()

	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	m.mu.Unlock()

	return err
}

// HasPermission reports whether the current user's role grants the
// permission. It is a pure function of role and permission.
func (m *Manager) HasPermission(permission string) bool {
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()

	if user == nil {
		return false
	}
	return RoleAllows(user.Role, permission)
}

// RoleAllows is the role/permission matrix: admin holds every permission,
// user may read and run policies, readonly may only read.
func RoleAllows(role, permission string) bool {
	switch role {
	case "admin":
		return true
	case "user":
		return permission == PermissionRead || permission == PermissionRunPolicy
	case "readonly":
		return permission == PermissionRead
	default:
		return false
	}
}

// InitiateSSOLogin requests a login URL for the provider. When the backend
// yields a usable URL the caller must redirect the user to it. When it does
// not, and demo mode is enabled, a clearly-flagged demo session is stored
// instead; with demo mode off the failure is returned.
func (m *Manager) InitiateSSOLogin(ctx context.Context, provider string) (LoginRedirect, error) {
	loginURL, err := m.client.SSOLoginURL(ctx, provider)
	if err == nil && loginURL != "" {
		return LoginRedirect{URL: loginURL}, nil
	}

	if !m.demoMode {
		if err != nil {
			return LoginRedirect{}, fmt.Errorf("failed to obtain SSO login URL: %w", err)
		}
		return LoginRedirect{}, fmt.Errorf("backend returned no login URL for provider %s", provider)
	}

	logrus.WithFields(logrus.Fields{
		"provider": provider,
	}).WithError(err).Warnln("SSO login unavailable, falling back to demo session")

	user := demoUser(provider)
	adopted, loginErr := m.LoginWithSSO(&api.SSOTokenResponse{
		AccessToken: demoToken,
		TokenType:   "Bearer",
		User:        user,
	})
	if loginErr != nil {
		return LoginRedirect{}, loginErr
	}

	return LoginRedirect{Demo: true, User: adopted}, nil
}

// ExchangeCode trades an authorization code for a session and adopts it.
// When the exchange fails and demo mode is enabled, a demo session is
// established instead; the returned redirect flags it as such.
func (m *Manager) ExchangeCode(ctx context.Context, code, provider string) (LoginRedirect, error) {
	resp, err := m.client.ExchangeSSOToken(ctx, code, provider)
	if err == nil {
		user, loginErr := m.LoginWithSSO(resp)
		if loginErr != nil {
			return LoginRedirect{}, loginErr
		}
		return LoginRedirect{User: user}, nil
	}

	if !m.demoMode {
		return LoginRedirect{}, err
	}

	logrus.WithError(err).Warnln("Token exchange failed, falling back to demo session")

	user := demoUser(provider)
	adopted, loginErr := m.LoginWithSSO(&api.SSOTokenResponse{
		AccessToken: demoToken,
		TokenType:   "Bearer",
		User:        user,
	})
	if loginErr != nil {
		return LoginRedirect{}, loginErr
	}
	return LoginRedirect{Demo: true, User: adopted}, nil
}
