package stacks

import (
	"testing"

	"github.com/slipwayhq/slipway/pkg/ci"
	"github.com/stretchr/testify/assert"
)

func TestResolveOutsideOfRecognisedCI(t *testing.T) {
	event := ci.Event{System: ci.None, SourceBranch: "master"}
	resolved := Resolve(event, Mapping{"master": "prod"}, false)
	assert.Nil(t, resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestResolvePushEventWithMappedBranch(t *testing.T) {
	event := ci.Event{System: ci.GitHub, SourceBranch: "master", CommitSHA: "abc123"}
	resolved := Resolve(event, Mapping{"master": "acmecorp/prod"}, false)
	assert.Equal(t, "acmecorp/prod", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)

	// git refs normalise to plain branch names
	event.SourceBranch = "refs/heads/master"
	resolved = Resolve(event, Mapping{"master": "acmecorp/prod"}, false)
	assert.Equal(t, "acmecorp/prod", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestResolvePushEventWithUnmappedBranch(t *testing.T) {
	event := ci.Event{System: ci.GitHub, SourceBranch: "master"}
	resolved := Resolve(event, Mapping{}, false)
	assert.Nil(t, resolved.StackName)
	assert.Equal(t, NoneConfigured, resolved.Action)

	resolved = Resolve(event, nil, false)
	assert.Equal(t, NoneConfigured, resolved.Action)
}

func TestResolveSkipsIrrelevantPullRequestActions(t *testing.T) {
	for _, action := range []string{"labeled", "assigned", "review_requested", "locked", "closed"} {
		event := ci.Event{
			System:        ci.GitHub,
			IsPullRequest: true,
			EventAction:   action,
			SourceBranch:  "feature-x",
			TargetBranch:  "master",
		}
		resolved := Resolve(event, Mapping{"master": "prod", "feature-x": "dev"}, false)
		assert.Nil(t, resolved.StackName, "action %q should not resolve a stack", action)
		assert.Equal(t, Skip, resolved.Action, "action %q should be skipped", action)
	}
}

func TestResolveCreatesReviewStackOnOpen(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "opened",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{}, true)
	assert.Equal(t, "feature-x-review", *resolved.StackName)
	assert.Equal(t, CreateReview, resolved.Action)

	event.EventAction = "reopened"
	resolved = Resolve(event, Mapping{}, true)
	assert.Equal(t, "feature-x-review", *resolved.StackName)
	assert.Equal(t, CreateReview, resolved.Action)
}

func TestResolveDestroysReviewStackOnClose(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "closed",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{}, true)
	assert.Equal(t, "feature-x-review", *resolved.StackName)
	assert.Equal(t, DestroyReview, resolved.Action)
}

func TestResolveReviewStacksFallThroughToMappingOnSynchronize(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "synchronize",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{"master": "prod"}, true)
	assert.Equal(t, "prod", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestResolvePullRequestFallsBackToTargetBranch(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "opened",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{"master": "prod"}, false)
	assert.Equal(t, "prod", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestResolvePullRequestPrefersExplicitSourceMapping(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "synchronize",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{"master": "prod", "feature-x": "dev"}, false)
	assert.Equal(t, "dev", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestResolveTreatsEmptyMappedValueAsNotConfigured(t *testing.T) {
	event := ci.Event{System: ci.GitHub, SourceBranch: "master"}
	resolved := Resolve(event, Mapping{"master": ""}, false)
	assert.Nil(t, resolved.StackName)
	assert.Equal(t, NoneConfigured, resolved.Action)
}

func TestResolvePullRequestEmptyMappedSourceFallsBackToTargetBranch(t *testing.T) {
	event := ci.Event{
		System:        ci.GitHub,
		IsPullRequest: true,
		EventAction:   "opened",
		SourceBranch:  "feature-x",
		TargetBranch:  "master",
	}
	resolved := Resolve(event, Mapping{"feature-x": "", "master": "prod"}, false)
	assert.Equal(t, "prod", *resolved.StackName)
	assert.Equal(t, Select, resolved.Action)
}

func TestNormalizeBranchRef(t *testing.T) {
	assert.Equal(t, "master", NormalizeBranchRef("refs/heads/master"))
	assert.Equal(t, "v1.0.0", NormalizeBranchRef("refs/tags/v1.0.0"))
	assert.Equal(t, "feature/login", NormalizeBranchRef("refs/heads/feature/login"))
	assert.Equal(t, "master", NormalizeBranchRef("master"))
}
