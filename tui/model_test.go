package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodash/api"
	"custodash/config"
	"custodash/session"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	storage := session.NewStorageAt(filepath.Join(t.TempDir(), "session"))
	client := api.New("http://127.0.0.1:1", storage)
	return Deps{
		Client: client,
		Creds:  session.NewCredentialStore(),
		SSO:    session.NewManager(client, storage, false),
		Config: &config.Config{APIURL: "http://127.0.0.1:1", Region: api.DefaultRegion},
	}
}

func ssoLogin(t *testing.T, deps Deps, role string) {
	t.Helper()
	_, err := deps.SSO.LoginWithSSO(&api.SSOTokenResponse{
		AccessToken: "tok-test",
		User:        api.User{ID: "u1", Email: "a@b.co", Role: role},
	})
	require.NoError(t, err)
}

func TestProtectedRoutesBounceLockedSessions(t *testing.T) {
	m := New(testDeps(t))

	for _, route := range []int{routeDashboard, routeResources, routePolicies, routePolicyRun, routeCosts, routeServices} {
		m.route = routeLogin
		cmd := m.navigate(route)
		assert.Equal(t, routeLogin, m.route, "locked session must stay on login")
		assert.NotNil(t, cmd, "bounce must surface a notification")
	}
}

func TestCredentialsUnlockNavigation(t *testing.T) {
	deps := testDeps(t)
	m := New(deps)

	deps.Creds.Set(api.Credentials{AccessKey: "AK", SecretKey: "SK", Region: "us-east-1"})
	cmd := m.navigate(routeDashboard)
	assert.Equal(t, routeDashboard, m.route)
	assert.NotNil(t, cmd, "entering a page must trigger a fetch")
}

func TestSSOSessionUnlocksNavigation(t *testing.T) {
	deps := testDeps(t)
	m := New(deps)
	ssoLogin(t, deps, "readonly")

	m.navigate(routePolicies)
	assert.Equal(t, routePolicies, m.route)
}

func TestLoginAndCallbackStayReachableWhileLocked(t *testing.T) {
	m := New(testDeps(t))

	m.navigate(routeCallback)
	assert.Equal(t, routeCallback, m.route)
	m.navigate(routeLogin)
	assert.Equal(t, routeLogin, m.route)
}

func TestUnlockedReflectsEitherSessionKind(t *testing.T) {
	deps := testDeps(t)
	m := New(deps)
	assert.False(t, m.unlocked())

	deps.Creds.Set(api.Credentials{AccessKey: "AK", SecretKey: "SK"})
	assert.True(t, m.unlocked())

	deps.Creds.Clear()
	assert.False(t, m.unlocked())

	ssoLogin(t, deps, "user")
	assert.True(t, m.unlocked())
}

func TestToastLifecycle(t *testing.T) {
	m := New(testDeps(t))

	cmd := m.showToast("hello", toastInfo)
	require.NotNil(t, cmd)
	require.Len(t, m.toasts, 1)
	assert.Contains(t, m.toastView(), "hello")

	m.expireToast(m.toasts[0].id)
	assert.Empty(t, m.toasts)
	assert.Empty(t, m.toastView())
}
