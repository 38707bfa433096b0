package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodash/api"
	"custodash/config"
	"custodash/session"
)

func ssoDeps(t *testing.T, cfg api.SSOConfig) Deps {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/sso/config" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg)
	}))
	t.Cleanup(server.Close)

	storage := session.NewStorageAt(filepath.Join(t.TempDir(), "session"))
	client := api.New(server.URL, storage)
	mgr := session.NewManager(client, storage, false)
	mgr.Initialize(context.Background())
	require.Equal(t, cfg.DefaultProvider, mgr.Config().DefaultProvider)

	return Deps{
		Client: client,
		Creds:  session.NewCredentialStore(),
		SSO:    mgr,
		Config: &config.Config{APIURL: server.URL, Region: api.DefaultRegion},
	}
}

func multiProviderConfig() api.SSOConfig {
	return api.SSOConfig{
		Enabled:         true,
		DefaultProvider: "azure",
		Providers: []api.SSOProviderInfo{
			{ID: "azure", Name: "Azure AD"},
			{ID: "okta", Name: "Okta"},
		},
	}
}

func TestProviderUsesBackendIdentifier(t *testing.T) {
	l := newLoginModel(ssoDeps(t, multiProviderConfig()))

	assert.Equal(t, "azure", l.provider(), "the backend resolves providers by id, not display name")
	assert.Equal(t, "Azure AD", l.providerName())

	l.providerIdx++
	assert.Equal(t, "okta", l.provider())
	assert.Equal(t, "Okta", l.providerName())
}

func TestProviderFallsBackToDefaultID(t *testing.T) {
	l := newLoginModel(ssoDeps(t, api.SSOConfig{Enabled: true, DefaultProvider: "okta"}))
	assert.Equal(t, "okta", l.provider())
}

func TestCallbackCarriesProviderID(t *testing.T) {
	m := New(ssoDeps(t, multiProviderConfig()))

	updated, _ := m.Update(startCallbackMsg{})
	got := updated.(Model)
	assert.Equal(t, routeCallback, got.route)
	assert.Equal(t, "azure", got.callback.provider)
}
