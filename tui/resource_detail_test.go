package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodash/api"
)

func TestPadCountsRunes(t *testing.T) {
	assert.Equal(t, "id      ", pad("id", 8))
	assert.Equal(t, "región  ", pad("región", 8), "multibyte keys must line up with ASCII ones")
	assert.Equal(t, "over-the-width ", pad("over-the-width", 8))
}

func TestDetailViewRendersFieldsAndTags(t *testing.T) {
	d := newDetailModel(testDeps(t))
	d.show("ec2", api.Resource{
		"id":    "i-web1",
		"state": "running",
		"tags":  map[string]any{"env": "prod", "team": "core"},
	})

	out := d.view()
	assert.Contains(t, out, "EC2 resource: i-web1")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "Tags")
	assert.Contains(t, out, "prod")
}
