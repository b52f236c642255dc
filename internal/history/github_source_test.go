package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOwnerRepo(t *testing.T) {
	owner, repo, err := ParseOwnerRepo("genomectl/repogenome")
	assert.NoError(t, err)
	assert.Equal(t, "genomectl", owner)
	assert.Equal(t, "repogenome", repo)
}

func TestParseOwnerRepoRejectsMalformed(t *testing.T) {
	_, _, err := ParseOwnerRepo("not-a-slug")
	assert.Error(t, err)
}

func TestNewGitHubSourceDefaultsRPS(t *testing.T) {
	s := NewGitHubSource("", "genomectl", "repogenome", 0)
	assert.NotNil(t, s.rateLimiter)
}
