package runner

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/slipwayhq/slipway/pkg/aws/envprovider"
	"github.com/slipwayhq/slipway/pkg/ci"
	"github.com/slipwayhq/slipway/pkg/config"
	"github.com/slipwayhq/slipway/pkg/pulumi"
	"github.com/slipwayhq/slipway/pkg/reporting"
	"github.com/slipwayhq/slipway/pkg/stacks"
)

// ErrNoStackConfigured is returned when neither the CI event nor the
// environment yields a stack to run against.
var ErrNoStackConfigured = errors.New("no stack configured for this run")

// ErrReportingFailed is returned when the deployment itself succeeded but
// the result could not be posted back to the pull request.
var ErrReportingFailed = errors.New("failed to report results")

// Pipeline wires one CI run together: a resolved stack, the pulumi CLI flow
// it maps onto, and the pull request reporting around it.
type Pipeline struct {
	Config    *config.RunConfig
	Event     ci.Event
	Mapping   stacks.Mapping
	Executor  pulumi.Executor
	Reporter  reporting.Reporter
	PRService ci.PullRequestService
	// CommandOverride forces a specific pulumi command instead of deriving
	// preview/up from the event. Used by manual invocations.
	CommandOverride string
}

type Outcome struct {
	Resolved stacks.Resolved
	Stack    string
	Command  string
	Output   string
}

// Run performs at most one stack resolution followed by at most one pulumi
// flow. Skip and NoneConfigured come back as non-error outcomes with no CLI
// invocation behind them.
func (p *Pipeline) Run() (*Outcome, error) {
	resolved := stacks.Resolve(p.Event, p.Mapping, p.Config.ReviewStacks)
	outcome := &Outcome{Resolved: resolved}

	switch resolved.Action {
	case stacks.Skip:
		slog.Info("Event is not relevant for deployment, skipping", "eventAction", p.Event.EventAction)
		return outcome, nil
	case stacks.NoneConfigured:
		slog.Info("No stack configured for branch, nothing to do", "branch", stacks.NormalizeBranchRef(p.Event.SourceBranch))
		return outcome, nil
	}

	stackName := p.Config.StackName
	if resolved.StackName != nil {
		stackName = *resolved.StackName
	}
	if stackName == "" {
		return outcome, ErrNoStackConfigured
	}
	outcome.Stack = stackName

	awsEnvs, err := envprovider.DeployEnv(nil)
	if err != nil {
		return outcome, fmt.Errorf("failed to resolve deploy credentials: %w", err)
	}
	baseEnvs := map[string]string{}
	if p.Config.PulumiBackendUrl != "" {
		baseEnvs["PULUMI_BACKEND_URL"] = p.Config.PulumiBackendUrl
	}
	envs := lo.Assign(baseEnvs, awsEnvs)

	if _, _, err := p.Executor.Login(envs); err != nil {
		return outcome, fmt.Errorf("pulumi login failed: %w", err)
	}
	if _, _, err := p.Executor.Install(envs); err != nil {
		return outcome, fmt.Errorf("pulumi install failed: %w", err)
	}

	switch resolved.Action {
	case stacks.CreateReview:
		if _, _, err := p.Executor.InitStack(stackName, envs); err != nil {
			return outcome, fmt.Errorf("failed to init review stack %s: %w", stackName, err)
		}
	case stacks.DestroyReview:
		return p.destroyReviewStack(outcome, stackName, envs)
	default:
		if _, _, err := p.Executor.SelectStack(stackName, envs); err != nil {
			return outcome, fmt.Errorf("failed to select stack %s: %w", stackName, err)
		}
	}

	for key, value := range config.CollectSecretsFromEnv() {
		if _, _, err := p.Executor.SetConfig(key, value, true, envs); err != nil {
			return outcome, fmt.Errorf("failed to set secret config %s: %w", key, err)
		}
	}

	command := "up"
	if p.Event.IsPullRequest && !p.Config.SkipPreview {
		command = "preview"
	}
	if p.CommandOverride != "" {
		command = p.CommandOverride
	}
	outcome.Command = command

	var output string
	switch command {
	case "preview":
		output, _, err = p.Executor.Preview(nil, envs)
	case "destroy":
		output, _, err = p.Executor.Destroy(nil, envs)
	default:
		output, _, err = p.Executor.Up(nil, envs)
	}
	outcome.Output = output
	reportErr := p.report(outcome, err)
	if err != nil {
		return outcome, fmt.Errorf("pulumi %s failed: %w", command, err)
	}
	if reportErr != nil {
		return outcome, fmt.Errorf("%w: %v", ErrReportingFailed, reportErr)
	}

	return outcome, nil
}

func (p *Pipeline) destroyReviewStack(outcome *Outcome, stackName string, envs map[string]string) (*Outcome, error) {
	outcome.Command = "destroy"
	if _, _, err := p.Executor.SelectStack(stackName, envs); err != nil {
		return outcome, fmt.Errorf("failed to select review stack %s: %w", stackName, err)
	}
	output, _, err := p.Executor.Destroy(nil, envs)
	outcome.Output = output
	if err != nil {
		p.report(outcome, err)
		return outcome, fmt.Errorf("failed to destroy review stack %s: %w", stackName, err)
	}
	if _, _, err := p.Executor.RemoveStack(stackName, envs); err != nil {
		p.report(outcome, err)
		return outcome, fmt.Errorf("failed to remove review stack %s: %w", stackName, err)
	}
	slog.Info("Review stack destroyed", "stack", stackName)
	if reportErr := p.report(outcome, nil); reportErr != nil {
		return outcome, fmt.Errorf("%w: %v", ErrReportingFailed, reportErr)
	}
	return outcome, nil
}

func (p *Pipeline) report(outcome *Outcome, runErr error) error {
	statusContext := "slipway/" + outcome.Command

	// a PR number can come from the CI event or from a manual invocation
	// targeting a pull request, so gate on configuration, not event shape
	if p.PRService != nil && p.Event.PRNumber > 0 {
		status := "success"
		if runErr != nil {
			status = "failure"
		}
		if err := p.PRService.SetStatus(p.Event.PRNumber, status, statusContext); err != nil {
			slog.Error("Failed to set commit status", "error", err)
		}
	}

	if p.Reporter == nil || !p.Config.CommentOnPR {
		return nil
	}

	summary := fmt.Sprintf("Pulumi %s for stack `%s`", outcome.Command, outcome.Stack)
	var formatter func(string) string
	if p.Reporter.SupportsMarkdown() {
		formatter = reporting.GetPulumiOutputAsCollapsibleComment(summary, runErr != nil)
	} else {
		formatter = reporting.GetPulumiOutputAsComment(summary)
	}
	if err := p.Reporter.Report(outcome.Output, formatter); err != nil {
		slog.Error("Failed to report pulumi output", "error", err)
		return err
	}
	return nil
}
