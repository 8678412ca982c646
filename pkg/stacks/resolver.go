package stacks

import (
	"github.com/slipwayhq/slipway/pkg/ci"
)

// Action is what the caller should do with the resolved stack. Exactly one
// action is returned per run and it drives at most one pulumi invocation.
type Action string

const (
	// Select an existing stack and run against it.
	Select = Action("select")
	// CreateReview initialises an ephemeral per-pull-request stack.
	CreateReview = Action("create-review")
	// DestroyReview tears down and removes an ephemeral stack.
	DestroyReview = Action("destroy-review")
	// NoneConfigured means the effective branch has no stack mapped to it.
	NoneConfigured = Action("none-configured")
	// Skip means the event is irrelevant (e.g. a PR label change) and no
	// stack action or CLI call should happen at all.
	Skip = Action("skip")
)

func (a Action) String() string {
	return string(a)
}

// Mapping associates source-control branch names with stack names. It is
// loaded once per run and read-only afterwards.
type Mapping map[string]string

// Resolved is the outcome of stack resolution.
type Resolved struct {
	StackName *string
	Action    Action
}

// relevantPRActions are the pull request actions that should trigger a run.
// Everything else (labeled, review_requested, ...) resolves to Skip.
var relevantPRActions = map[string]bool{
	"opened":      true,
	"edited":      true,
	"synchronize": true,
	"reopened":    true,
}

// Resolve deterministically picks the deployment stack for a CI run. It is a
// pure function of its inputs: no I/O, no process environment.
//
// Outside of a recognised CI system it returns {nil, Select} and the caller
// is expected to supply a stack name itself. For pull request events the
// effective branch is the target branch unless the source branch is mapped
// explicitly, so a topic-branch PR resolves against the branch it merges
// into. With review stacks enabled, opened/reopened/closed PR events create
// or destroy a "<branch>-review" stack instead of consulting the mapping.
func Resolve(event ci.Event, mapping Mapping, reviewStacksEnabled bool) Resolved {
	if event.System == ci.None {
		return Resolved{StackName: nil, Action: Select}
	}

	sourceBranch := NormalizeBranchRef(event.SourceBranch)
	targetBranch := NormalizeBranchRef(event.TargetBranch)

	if event.IsPullRequest && reviewStacksEnabled {
		reviewStack := sourceBranch + "-review"
		switch event.EventAction {
		case "opened", "reopened":
			return Resolved{StackName: &reviewStack, Action: CreateReview}
		case "closed":
			return Resolved{StackName: &reviewStack, Action: DestroyReview}
		}
		// edited/synchronize and anything else fall through to the mapping
	}

	if event.IsPullRequest && !relevantPRActions[event.EventAction] {
		return Resolved{StackName: nil, Action: Skip}
	}

	effectiveBranch := sourceBranch
	if event.IsPullRequest {
		// a branch mapped to an empty stack name does not resolve, so it
		// falls back to the target branch just like an unmapped one
		if mapping[sourceBranch] == "" && targetBranch != "" {
			effectiveBranch = targetBranch
		}
	}

	if stack, ok := mapping[effectiveBranch]; ok && stack != "" {
		return Resolved{StackName: &stack, Action: Select}
	}
	return Resolved{StackName: nil, Action: NoneConfigured}
}
