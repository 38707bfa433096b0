package api

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultRegion is used whenever a credential set carries no region.
const DefaultRegion = "us-east-1"

// Credentials holds the AWS credentials entered for the current session.
// They always marshal to the backend's snake_case shape.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	Region       string
	SessionToken string
}

func (c Credentials) MarshalJSON() ([]byte, error) {
	body := map[string]string{
		"access_key": c.AccessKey,
		"secret_key": c.SecretKey,
		"region":     c.Region,
	}
	if body["region"] == "" {
		body["region"] = DefaultRegion
	}
	if c.SessionToken != "" {
		body["session_token"] = c.SessionToken
	}
	return json.Marshal(body)
}

// Empty reports whether no credentials have been entered.
func (c Credentials) Empty() bool {
	return c.AccessKey == "" && c.SecretKey == ""
}

// CredentialsFromMap builds Credentials from a loosely-typed map, accepting
// both the snake_case and camelCase key conventions so callers never need to
// know which one they hold.
func CredentialsFromMap(m map[string]any) Credentials {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}

	creds := Credentials{
		AccessKey:    pick("access_key", "accessKey"),
		SecretKey:    pick("secret_key", "secretKey"),
		Region:       pick("region"),
		SessionToken: pick("session_token", "sessionToken"),
	}
	if creds.Region == "" {
		creds.Region = DefaultRegion
	}
	return creds
}

// User is the authenticated SSO identity as reported by the backend.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
}

// SSOProviderInfo identifies a configured identity provider.
type SSOProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SSOConfig is fetched once at startup and read-only afterwards.
type SSOConfig struct {
	Enabled         bool              `json:"enabled"`
	DefaultProvider string            `json:"default_provider"`
	UseLegacyAuth   bool              `json:"use_legacy_auth"`
	Providers       []SSOProviderInfo `json:"providers"`
}

// DefaultSSOConfig is the fallback used when the config fetch fails.
func DefaultSSOConfig() SSOConfig {
	return SSOConfig{
		Enabled:       false,
		UseLegacyAuth: true,
	}
}

// SSOTokenResponse is returned by the token-exchange endpoint.
type SSOTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// Policy is a server-owned compliance/remediation rule.
type Policy struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
	Category     string `json:"category"`
	Content      string `json:"content"`
}

type policyList struct {
	Policies []Policy `json:"policies"`
}

// PolicyRunResult is the outcome of one policy run or dry run.
type PolicyRunResult struct {
	PolicyID       string     `json:"policy_id"`
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	ResourcesCount int        `json:"resources_count"`
	Resources      []Resource `json:"resources"`
	Errors         []string   `json:"errors"`
}

// ServiceSummary is one entry of the per-service resource summary.
type ServiceSummary struct {
	Count   int    `json:"count"`
	Running int    `json:"running"`
	Stopped int    `json:"stopped"`
	Error   string `json:"error,omitempty"`
}

// Resource is a single AWS resource as reported by the backend. The field
// set varies per service, so it stays a map with typed accessors.
type Resource map[string]any

// Str returns the named field rendered as a string, or "" when absent.
func (r Resource) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Tags returns the resource's tag map, if it has one.
func (r Resource) Tags() map[string]string {
	raw, ok := r["tags"].(map[string]any)
	if !ok {
		return nil
	}
	tags := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			tags[k] = s
		}
	}
	return tags
}

// ResourceList is the per-service resource listing. The backend keys the
// list differently per service (instances, buckets, functions).
type ResourceList struct {
	Instances []Resource `json:"instances"`
	Buckets   []Resource `json:"buckets"`
	Functions []Resource `json:"functions"`
}

// ForService flattens the listing for the given service id.
func (l ResourceList) ForService(service string) []Resource {
	switch service {
	case "ec2", "rds":
		return l.Instances
	case "s3":
		return l.Buckets
	case "lambda":
		return l.Functions
	default:
		return nil
	}
}

// costAmount tolerates Cost Explorer amounts arriving as either JSON numbers
// or numeric strings.
type costAmount float64

func (a *costAmount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = costAmount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid cost amount %q: %w", s, err)
	}
	*a = costAmount(n)
	return nil
}

// CostPoint is one interval of the cost series.
type CostPoint struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Cost      costAmount `json:"cost"`
}

// Amount returns the point's cost as a plain float.
func (p CostPoint) Amount() float64 {
	return float64(p.Cost)
}

// CostPeriod is the aggregated cost data for one time period.
type CostPeriod struct {
	TotalCost  costAmount  `json:"total_cost"`
	DataPoints []CostPoint `json:"data_points"`
}

// Total returns the period's total cost, zero when the field was absent.
func (p CostPeriod) Total() float64 {
	return float64(p.TotalCost)
}

// CostData maps a period id (1m, 3m, 6m) to its cost data.
type CostData map[string]CostPeriod
