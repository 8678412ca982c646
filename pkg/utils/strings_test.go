package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepoNamespace(t *testing.T) {
	owner, name := ParseRepoNamespace("acmecorp/website")
	assert.Equal(t, "acmecorp", owner)
	assert.Equal(t, "website", name)

	owner, name = ParseRepoNamespace("acmecorp")
	assert.Equal(t, "acmecorp", owner)
	assert.Equal(t, "", name)
}
