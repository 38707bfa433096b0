package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsFromMapAcceptsBothCasings(t *testing.T) {
	snake := CredentialsFromMap(map[string]any{
		"access_key":    "AK1",
		"secret_key":    "SK1",
		"session_token": "ST1",
		"region":        "eu-west-1",
	})
	assert.Equal(t, "AK1", snake.AccessKey)
	assert.Equal(t, "eu-west-1", snake.Region)

	camel := CredentialsFromMap(map[string]any{
		"accessKey": "AK2",
		"secretKey": "SK2",
	})
	assert.Equal(t, "AK2", camel.AccessKey)
	assert.Equal(t, "SK2", camel.SecretKey)
	assert.Equal(t, DefaultRegion, camel.Region)
}

func TestResourceAccessors(t *testing.T) {
	r := Resource{
		"id":     "i-0abc",
		"memory": float64(256),
		"public": true,
		"tags":   map[string]any{"Team": "platform", "count": 3},
	}

	assert.Equal(t, "i-0abc", r.Str("id"))
	assert.Equal(t, "256", r.Str("memory"))
	assert.Equal(t, "true", r.Str("public"))
	assert.Equal(t, "", r.Str("missing"))

	tags := r.Tags()
	assert.Equal(t, map[string]string{"Team": "platform"}, tags)
}

func TestResourceListForService(t *testing.T) {
	list := ResourceList{
		Instances: []Resource{{"id": "i-1"}},
		Buckets:   []Resource{{"name": "b-1"}},
		Functions: []Resource{{"name": "f-1"}},
	}

	assert.Len(t, list.ForService("ec2"), 1)
	assert.Len(t, list.ForService("rds"), 1)
	assert.Equal(t, "b-1", list.ForService("s3")[0].Str("name"))
	assert.Equal(t, "f-1", list.ForService("lambda")[0].Str("name"))
	assert.Nil(t, list.ForService("dynamodb"))
}

func TestCostPeriodToleratesStringAmounts(t *testing.T) {
	var data CostData
	raw := `{"3m": {"total_cost": "42.10", "data_points": [
		{"start_date": "2026-06-01", "cost": "10.5"},
		{"start_date": "2026-07-01", "cost": 31.6}
	]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &data))

	period := data["3m"]
	assert.InDelta(t, 42.10, period.Total(), 0.001)
	assert.InDelta(t, 10.5, period.DataPoints[0].Amount(), 0.001)
	assert.InDelta(t, 31.6, period.DataPoints[1].Amount(), 0.001)
}
