package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodash/api"
)

func testPolicies() []api.Policy {
	return []api.Policy{
		{ID: "p1", Name: "ec2-stop-untagged", Category: "cost", ResourceType: "ec2", Description: "Stop untagged instances"},
		{ID: "p2", Name: "s3-encrypt", Category: "security", ResourceType: "s3", Description: "Require bucket encryption"},
		{ID: "p3", Name: "ec2-old-generation", Category: "cost", ResourceType: "ec2", Description: "Flag old instance generations"},
	}
}

func TestPolicyCategoryFilter(t *testing.T) {
	p := newPoliciesModel(testDeps(t))
	p.items = testPolicies()
	p.categories = []string{allCategories, "cost", "security"}

	p.refresh()
	assert.Len(t, p.visible, 3)

	p.catIdx = 1 // cost
	p.refresh()
	assert.Len(t, p.visible, 2)
	for _, policy := range p.visible {
		assert.Equal(t, "cost", policy.Category)
	}

	p.catIdx = 2 // security
	p.refresh()
	assert.Len(t, p.visible, 1)
	assert.Equal(t, "p2", p.visible[0].ID)
}

func TestPolicySearchMatchesNameDescriptionAndResource(t *testing.T) {
	p := newPoliciesModel(testDeps(t))
	p.items = testPolicies()

	tests := []struct {
		query string
		ids   []string
	}{
		{query: "encrypt", ids: []string{"p2"}},
		{query: "EC2", ids: []string{"p1", "p3"}},
		{query: "untagged", ids: []string{"p1"}},
		{query: "nomatch", ids: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p.search.SetValue(tt.query)
			p.refresh()

			var got []string
			for _, policy := range p.visible {
				got = append(got, policy.ID)
			}
			assert.Equal(t, tt.ids, got)
		})
	}
}

func TestPolicySearchCombinesWithCategory(t *testing.T) {
	p := newPoliciesModel(testDeps(t))
	p.items = testPolicies()
	p.categories = []string{allCategories, "cost", "security"}
	p.catIdx = 1
	p.search.SetValue("old")

	p.refresh()
	assert.Len(t, p.visible, 1)
	assert.Equal(t, "p3", p.visible[0].ID)
}

func TestStalePolicyResponsesAreDropped(t *testing.T) {
	p := newPoliciesModel(testDeps(t))
	cmd := p.load()
	assert.NotNil(t, cmd)

	p, _ = p.update(policiesMsg{seq: p.seq - 1, policies: testPolicies()})
	assert.True(t, p.loading)
	assert.Empty(t, p.items)

	p, _ = p.update(policiesMsg{seq: p.seq, policies: testPolicies(), categories: []string{"cost", "security"}})
	assert.False(t, p.loading)
	assert.Len(t, p.items, 3)
	assert.Equal(t, []string{allCategories, "cost", "security"}, p.categories)
}
