package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is used when no backend address is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// TokenStore supplies the stored SSO token for outgoing requests and lets
// the client discard it when the backend rejects it.
type TokenStore interface {
	Token() string
	Clear() error
}

// Client is the single chokepoint for all backend calls.
type Client struct {
	rest   *resty.Client
	tokens TokenStore
}

// New creates a client for the given backend base URL. tokens may be nil
// when no SSO session storage exists, e.g. in tests.
func New(baseURL string, tokens TokenStore) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rest := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	rest.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		if tokens != nil {
			if token := tokens.Token(); token != "" {
				req.SetAuthToken(token)
			}
		}
		return nil
	})

	return &Client{rest: rest, tokens: tokens}
}

// do issues a request and decodes the 2xx body into out. Every failure is
// returned as *Error, never as a raw transport error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Debugln("Request did not complete")
		return transportError(err)
	}

	if resp.IsError() {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode(),
		}).Debugln("Backend returned an error status")
		return serverError(resp.StatusCode(), resp.Body())
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return clientError(fmt.Errorf("failed to parse response: %w", err))
		}
	}

	return nil
}

// ValidateCredentials asks the backend to verify the given AWS credentials.
func (c *Client) ValidateCredentials(ctx context.Context, creds Credentials) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodPost, "/aws/validate-credentials", creds, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// ResourceSummary fetches the per-service resource counts.
func (c *Client) ResourceSummary(ctx context.Context, creds Credentials) (map[string]ServiceSummary, error) {
	var out map[string]ServiceSummary
	if err := c.do(ctx, http.MethodPost, "/aws/resources/summary", creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resources lists the resources of one AWS service.
func (c *Client) Resources(ctx context.Context, service string, creds Credentials) (ResourceList, error) {
	var out ResourceList
	if err := c.do(ctx, http.MethodPost, "/aws/resources/"+service, creds, &out); err != nil {
		return ResourceList{}, err
	}
	return out, nil
}

// ResourceTags lists the tag keys and values in use for one service.
func (c *Client) ResourceTags(ctx context.Context, service string, creds Credentials) (map[string][]string, error) {
	var out map[string][]string
	if err := c.do(ctx, http.MethodPost, "/aws/resources/"+service+"/tags", creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceCost fetches cost data for one service, optionally scoped to a
// single period (1m, 3m, 6m). An empty period returns all periods.
func (c *Client) ServiceCost(ctx context.Context, service, period string, creds Credentials) (CostData, error) {
	path := "/aws/cost/" + service
	if period != "" {
		path += "/" + period
	}
	var out CostData
	if err := c.do(ctx, http.MethodPost, path, creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TerraformResources enumerates resources known to the backend's Terraform
// state for the credential's region.
func (c *Client) TerraformResources(ctx context.Context, creds Credentials) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/aws/terraform/resources", creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPolicies returns all policies known to the backend.
func (c *Client) ListPolicies(ctx context.Context) ([]Policy, error) {
	var out policyList
	if err := c.do(ctx, http.MethodGet, "/policies", nil, &out); err != nil {
		return nil, err
	}
	return out.Policies, nil
}

// GetPolicy fetches one policy by id.
func (c *Client) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	var out Policy
	if err := c.do(ctx, http.MethodGet, "/policies/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PolicyCategories returns the known policy categories.
func (c *Client) PolicyCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/policies/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePolicy stores a new policy on the backend.
func (c *Client) CreatePolicy(ctx context.Context, policy Policy) (*Policy, error) {
	var out Policy
	if err := c.do(ctx, http.MethodPost, "/policies", policy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePolicy replaces an existing policy.
func (c *Client) UpdatePolicy(ctx context.Context, policy Policy) (*Policy, error) {
	var out Policy
	if err := c.do(ctx, http.MethodPut, "/policies/"+policy.ID, policy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePolicy removes a policy.
func (c *Client) DeletePolicy(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/policies/"+id, nil, nil)
}

// RunPolicy executes a policy against the account the credentials grant.
func (c *Client) RunPolicy(ctx context.Context, id string, creds Credentials) (*PolicyRunResult, error) {
	var out PolicyRunResult
	if err := c.do(ctx, http.MethodPost, "/custodian/run/"+id, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DryRunPolicy evaluates a policy without applying its actions.
func (c *Client) DryRunPolicy(ctx context.Context, id string, creds Credentials) (*PolicyRunResult, error) {
	var out PolicyRunResult
	if err := c.do(ctx, http.MethodPost, "/custodian/dryrun/"+id, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PolicyOutput fetches the stored output of a past run.
func (c *Client) PolicyOutput(ctx context.Context, jobID string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/custodian/outputs/"+jobID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compliance evaluates compliance for one policy, or for all policies when
// policyID is empty.
func (c *Client) Compliance(ctx context.Context, policyID string, creds Credentials) (map[string]any, error) {
	path := "/custodian/compliance"
	if policyID != "" {
		path += "/" + policyID
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, path, creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Schema kinds accepted by Schemas.
const (
	SchemaResources = "resources"
	SchemaFilters   = "filters"
	SchemaActions   = "actions"
)

// Schemas fetches the policy engine's schema catalog for one kind.
func (c *Client) Schemas(ctx context.Context, kind string) (map[string]any, error) {
	switch kind {
	case SchemaResources, SchemaFilters, SchemaActions:
	default:
		return nil, clientError(fmt.Errorf("unknown schema kind %q", kind))
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/custodian/schemas/"+kind, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SSOConfig fetches the backend's SSO configuration.
func (c *Client) SSOConfig(ctx context.Context) (SSOConfig, error) {
	var out SSOConfig
	if err := c.do(ctx, http.MethodGet, "/auth/sso/config", nil, &out); err != nil {
		return SSOConfig{}, err
	}
	return out, nil
}

// SSOLoginURL asks the backend for the identity provider's login URL.
func (c *Client) SSOLoginURL(ctx context.Context, provider string) (string, error) {
	var out struct {
		LoginURL string `json:"login_url"`
	}
	body := map[string]string{"provider": provider}
	if err := c.do(ctx, http.MethodPost, "/auth/sso/login", body, &out); err != nil {
		return "", err
	}
	return out.LoginURL, nil
}

// ExchangeSSOToken trades an authorization code for a session token.
func (c *Client) ExchangeSSOToken(ctx context.Context, code, provider string) (*SSOTokenResponse, error) {
	var out SSOTokenResponse
	body := map[string]string{"code": code, "provider": provider}
	if err := c.do(ctx, http.MethodPost, "/auth/sso/token", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the authenticated user for the stored token. A 401
// means "not authenticated": the stored token is cleared and (nil, nil) is
// returned rather than an error.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/auth/me")
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				logrus.WithError(err).Warnln("Failed to clear stored session")
			}
		}
		return nil, nil
	}

	if resp.IsError() {
		return nil, serverError(resp.StatusCode(), resp.Body())
	}

	body := resp.Body()
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, clientError(fmt.Errorf("failed to parse response: %w", err))
	}
	return &user, nil
}
