package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodash/api"
)

func testInstances() []api.Resource {
	return []api.Resource{
		{
			"id": "i-web1", "type": "t3.micro", "state": "running",
			"public_ip": "3.3.3.3", "private_ip": "10.0.0.1",
			"tags": map[string]any{"Env": "prod", "Team": "web"},
		},
		{
			"id": "i-web2", "type": "t3.large", "state": "stopped",
			"private_ip": "10.0.0.2",
			"tags":       map[string]any{"Env": "staging", "Team": "web"},
		},
		{
			"id": "i-db1", "type": "r5.large", "state": "running",
			"private_ip": "10.0.0.3",
			"tags":       map[string]any{"Env": "prod", "Team": "data"},
		},
	}
}

func TestResourceSearchMatchesRenderedRow(t *testing.T) {
	r := newResourcesModel(testDeps(t))
	r.items = testInstances()

	r.search.SetValue("t3")
	r.refresh()
	assert.Len(t, r.visible, 2)

	// State column text is searchable too
	r.search.SetValue("STOPPED")
	r.refresh()
	assert.Len(t, r.visible, 1)
	assert.Equal(t, "i-web2", r.visible[0].Str("id"))

	r.search.SetValue("")
	r.refresh()
	assert.Len(t, r.visible, 3)
}

func TestTagFiltersRequireAllSelectedPairs(t *testing.T) {
	r := newResourcesModel(testDeps(t))
	r.items = testInstances()

	r.activeTags = map[string]string{"Env": "prod"}
	r.refresh()
	assert.Len(t, r.visible, 2)

	r.activeTags["Team"] = "web"
	r.refresh()
	assert.Len(t, r.visible, 1)
	assert.Equal(t, "i-web1", r.visible[0].Str("id"))
}

func TestToggleTag(t *testing.T) {
	r := newResourcesModel(testDeps(t))
	r.items = testInstances()
	r.tagPairs = []string{"Env=prod", "Env=staging", "Team=web"}

	r.toggleTag()
	assert.Equal(t, "prod", r.activeTags["Env"])
	assert.Len(t, r.visible, 2)

	// Toggling the same pair again removes the filter
	r.toggleTag()
	_, active := r.activeTags["Env"]
	assert.False(t, active)
	assert.Len(t, r.visible, 3)

	// Selecting a different value for the same key replaces it
	r.toggleTag()
	r.tagIdx = 1
	r.toggleTag()
	assert.Equal(t, "staging", r.activeTags["Env"])
	assert.Len(t, r.visible, 1)
}

func TestRowForPerService(t *testing.T) {
	assert.Equal(t, []string{"i-1", "t3.micro", "running", "1.1.1.1", "10.0.0.1"},
		[]string(rowFor("ec2", api.Resource{
			"id": "i-1", "type": "t3.micro", "state": "running",
			"public_ip": "1.1.1.1", "private_ip": "10.0.0.1",
		})))

	assert.Equal(t, []string{"assets", "2024-01-01T00:00:00"},
		[]string(rowFor("s3", api.Resource{"name": "assets", "creation_date": "2024-01-01T00:00:00"})))

	assert.Equal(t, []string{"db-1", "postgres", "available", "db.r5.large"},
		[]string(rowFor("rds", api.Resource{"id": "db-1", "engine": "postgres", "status": "available", "size": "db.r5.large"})))

	assert.Equal(t, []string{"fn", "go1.x", "256", "2024-05-01"},
		[]string(rowFor("lambda", api.Resource{"name": "fn", "runtime": "go1.x", "memory": float64(256), "last_modified": "2024-05-01"})))
}

func TestFlattenTagsSortsPairs(t *testing.T) {
	pairs := flattenTags(map[string][]string{
		"Team": {"web", "data"},
		"Env":  {"prod"},
	})
	assert.Equal(t, []string{"Env=prod", "Team=data", "Team=web"}, pairs)
}
