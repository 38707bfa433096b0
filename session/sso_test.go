package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodash/api"
)

type fakeAuthAPI struct {
	config       api.SSOConfig
	configErr    error
	currentUser  *api.User
	currentErr   error
	loginURL     string
	loginErr     error
	exchangeResp *api.SSOTokenResponse
	exchangeErr  error
}

func (f *fakeAuthAPI) SSOConfig(context.Context) (api.SSOConfig, error) {
	return f.config, f.configErr
}

func (f *fakeAuthAPI) CurrentUser(context.Context) (*api.User, error) {
	return f.currentUser, f.currentErr
}

func (f *fakeAuthAPI) SSOLoginURL(context.Context, string) (string, error) {
	return f.loginURL, f.loginErr
}

func (f *fakeAuthAPI) ExchangeSSOToken(context.Context, string, string) (*api.SSOTokenResponse, error) {
	return f.exchangeResp, f.exchangeErr
}

func enabledConfig() api.SSOConfig {
	return api.SSOConfig{
		Enabled:         true,
		DefaultProvider: "okta",
		Providers:       []api.SSOProviderInfo{{ID: "okta", Name: "okta"}},
	}
}

func TestInitializeRestoresValidSession(t *testing.T) {
	storage := testStorage(t)
	user := api.User{ID: "u1", Email: "a@b.co", Role: "user"}
	require.NoError(t, storage.Save("tok-1", user))

	client := &fakeAuthAPI{config: enabledConfig(), currentUser: &user}
	mgr := NewManager(client, storage, false)
	assert.True(t, mgr.Loading())

	mgr.Initialize(context.Background())

	assert.False(t, mgr.Loading())
	assert.True(t, mgr.Authenticated())
	require.NotNil(t, mgr.User())
	assert.Equal(t, "u1", mgr.User().ID)
	assert.True(t, mgr.Config().Enabled)
}

func TestInitializeClearsRejectedSession(t *testing.T) {
	storage := testStorage(t)
	require.NoError(t, storage.Save("expired", api.User{ID: "u1"}))

	// nil user without error models the backend answering 401
	client := &fakeAuthAPI{config: enabledConfig(), currentUser: nil}
	mgr := NewManager(client, storage, false)
	mgr.Initialize(context.Background())

	assert.False(t, mgr.Authenticated())
	assert.Nil(t, mgr.User())

	token, user, err := storage.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestInitializeFallsBackToDefaultConfig(t *testing.T) {
	storage := testStorage(t)
	client := &fakeAuthAPI{configErr: errors.New("connect refused")}
	mgr := NewManager(client, storage, false)

	mgr.Initialize(context.Background())

	cfg := mgr.Config()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.UseLegacyAuth)
}

func TestRoleAllows(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		allowed    bool
	}{
		{role: "admin", permission: PermissionRead, allowed: true},
		{role: "admin", permission: PermissionRunPolicy, allowed: true},
		{role: "admin", permission: "manage_users", allowed: true},
		{role: "user", permission: PermissionRead, allowed: true},
		{role: "user", permission: PermissionRunPolicy, allowed: true},
		{role: "user", permission: "manage_users", allowed: false},
		{role: "readonly", permission: PermissionRead, allowed: true},
		{role: "readonly", permission: PermissionRunPolicy, allowed: false},
		{role: "auditor", permission: PermissionRead, allowed: false},
		{role: "", permission: PermissionRead, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			assert.Equal(t, tt.allowed, RoleAllows(tt.role, tt.permission))
		})
	}
}

func TestHasPermissionWithoutUser(t *testing.T) {
	mgr := NewManager(&fakeAuthAPI{}, testStorage(t), false)
	assert.False(t, mgr.HasPermission(PermissionRead))
}

func TestInitiateSSOLoginReturnsURL(t *testing.T) {
	mgr := NewManager(&fakeAuthAPI{loginURL: "https://idp/login"}, testStorage(t), false)

	redirect, err := mgr.InitiateSSOLogin(context.Background(), "okta")
	require.NoError(t, err)
	assert.Equal(t, "https://idp/login", redirect.URL)
	assert.False(t, redirect.Demo)
	assert.False(t, mgr.Authenticated())
}

func TestInitiateSSOLoginFailureWithoutDemoMode(t *testing.T) {
	mgr := NewManager(&fakeAuthAPI{loginErr: errors.New("boom")}, testStorage(t), false)

	_, err := mgr.InitiateSSOLogin(context.Background(), "okta")
	require.Error(t, err)
	assert.False(t, mgr.Authenticated())
}

func TestInitiateSSOLoginDemoFallback(t *testing.T) {
	storage := testStorage(t)
	mgr := NewManager(&fakeAuthAPI{loginErr: errors.New("boom")}, storage, true)

	redirect, err := mgr.InitiateSSOLogin(context.Background(), "okta")
	require.NoError(t, err)
	assert.True(t, redirect.Demo)
	require.NotNil(t, redirect.User)
	assert.Equal(t, "user@example.com", redirect.User.Email)
	assert.Equal(t, "admin", redirect.User.Role)
	assert.True(t, mgr.Authenticated())

	token, _, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "demo-token-123", token)
}

func TestExchangeCodeAdoptsSession(t *testing.T) {
	storage := testStorage(t)
	resp := &api.SSOTokenResponse{
		AccessToken: "tok-xyz",
		TokenType:   "Bearer",
		User:        api.User{ID: "u9", Email: "x@y.z", Role: "readonly", Provider: "okta"},
	}
	mgr := NewManager(&fakeAuthAPI{exchangeResp: resp}, storage, false)

	redirect, err := mgr.ExchangeCode(context.Background(), "code-1", "okta")
	require.NoError(t, err)
	assert.False(t, redirect.Demo)
	assert.True(t, mgr.Authenticated())
	assert.False(t, mgr.HasPermission(PermissionRunPolicy))
	assert.True(t, mgr.HasPermission(PermissionRead))

	token, user, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
	require.NotNil(t, user)
	assert.Equal(t, "u9", user.ID)
}

func TestExchangeCodeFailureWithoutDemoMode(t *testing.T) {
	mgr := NewManager(&fakeAuthAPI{exchangeErr: errors.New("bad code")}, testStorage(t), false)

	_, err := mgr.ExchangeCode(context.Background(), "code-1", "okta")
	require.Error(t, err)
	assert.False(t, mgr.Authenticated())
}

func TestLogoutClearsEverything(t *testing.T) {
	storage := testStorage(t)
	resp := &api.SSOTokenResponse{AccessToken: "tok", User: api.User{ID: "u1", Role: "admin"}}
	mgr := NewManager(&fakeAuthAPI{exchangeResp: resp}, storage, false)
	_, err := mgr.ExchangeCode(context.Background(), "c", "okta")
	require.NoError(t, err)

	require.NoError(t, mgr.Logout())
	assert.False(t, mgr.Authenticated())
	assert.Nil(t, mgr.User())
	assert.Empty(t, storage.Token())
}
