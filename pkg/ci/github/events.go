package github

import (
	"github.com/google/go-github/v61/github"
	"github.com/slipwayhq/slipway/pkg/ci"
)

// ToEvent reduces a parsed Actions context to the immutable ci.Event the
// stack resolution works from.
func ToEvent(c *ActionContext) ci.Event {
	event := ci.Event{
		System:       ci.GitHub,
		EventAction:  c.Action,
		SourceBranch: c.RefName,
		CommitSHA:    c.SHA,
		Actor:        c.Actor,
		Repository:   c.Repository,
	}
	if event.SourceBranch == "" {
		event.SourceBranch = c.Ref
	}

	switch payload := c.Event.(type) {
	case github.PullRequestEvent:
		event.IsPullRequest = true
		if payload.Action != nil {
			event.EventAction = *payload.Action
		}
		if pr := payload.PullRequest; pr != nil {
			if pr.Number != nil {
				event.PRNumber = *pr.Number
			}
			if pr.Head != nil && pr.Head.Ref != nil {
				event.SourceBranch = *pr.Head.Ref
			}
			if pr.Base != nil && pr.Base.Ref != nil {
				event.TargetBranch = *pr.Base.Ref
			}
			if pr.Head != nil && pr.Head.SHA != nil {
				event.CommitSHA = *pr.Head.SHA
			}
		}
	case github.PushEvent:
		if payload.Ref != nil {
			event.SourceBranch = *payload.Ref
		}
		if payload.After != nil {
			event.CommitSHA = *payload.After
		}
	}

	return event
}
