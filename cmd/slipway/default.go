package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/slipwayhq/slipway/pkg/ci"
	gh "github.com/slipwayhq/slipway/pkg/ci/github"
	"github.com/slipwayhq/slipway/pkg/config"
	"github.com/slipwayhq/slipway/pkg/pulumi"
	"github.com/slipwayhq/slipway/pkg/reporting"
	"github.com/slipwayhq/slipway/pkg/runner"
	"github.com/slipwayhq/slipway/pkg/stacks"
	"github.com/slipwayhq/slipway/pkg/usage"
	"github.com/slipwayhq/slipway/pkg/utils"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use: "default",
	Run: func(cmd *cobra.Command, args []string) {
		initLogger()

		var logLeader = "Unknown CI"
		defer func() {
			if r := recover(); r != nil {
				slog.Error("stacktrace from panic: " + string(debug.Stack()))
				err := usage.SendLogRecord(logLeader, fmt.Sprintf("Panic occurred. %s", r))
				if err != nil {
					slog.Error("Failed to send log record", "error", err)
				}
				os.Exit(1)
			}
		}()

		switch ci.DetectCI() {
		case ci.GitHub:
			logLeader = os.Getenv("GITHUB_ACTOR")
			gitHubCI()
		case ci.None:
			noCI()
		}
	},
}

func gitHubCI() {
	slog.Info("Using GitHub.")
	githubActor := os.Getenv("GITHUB_ACTOR")
	if githubActor != "" {
		usage.SendUsageRecord(githubActor, "log", "initialize")
	} else {
		usage.SendUsageRecord("", "log", "non github initialisation")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		usage.ReportErrorAndExit(githubActor, fmt.Sprintf("Failed to parse run config. %s", err), 1)
	}

	if os.Getenv("GITHUB_CONTEXT") == "" && os.Getenv("GITHUB_EVENT_NAME") == "" {
		usage.ReportErrorAndExit(githubActor, "GITHUB_CONTEXT is not defined", 2)
	}

	actionContext, err := gh.ContextFromEnv()
	if err != nil {
		usage.ReportErrorAndExit(githubActor, fmt.Sprintf("Failed to parse GitHub context. %s", err), 3)
	}
	slog.Info("GitHub context parsed successfully")

	event := gh.ToEvent(actionContext)

	mapping, err := config.LoadStackMapping(cfg.MappingPath)
	if err != nil {
		usage.ReportErrorAndExit(githubActor, fmt.Sprintf("Failed to load stack mapping. %s", err), 4)
	}
	slog.Info("Stack mapping loaded", "entries", len(mapping))

	pipeline := &runner.Pipeline{
		Config:   cfg,
		Event:    event,
		Mapping:  mapping,
		Executor: pulumi.CLI{WorkingDir: cfg.PulumiRoot, BackendUrl: cfg.PulumiBackendUrl},
	}

	if event.IsPullRequest {
		if cfg.GithubToken == "" {
			usage.ReportErrorAndExit(githubActor, "GITHUB_TOKEN is not defined", 1)
		}
		repoOwner, repositoryName := utils.ParseRepoNamespace(event.Repository)
		prService, err := gh.ServiceProviderBasic{}.NewService(cfg.GithubToken, repositoryName, repoOwner)
		if err != nil {
			usage.ReportErrorAndExit(githubActor, fmt.Sprintf("Failed to initialise GitHub service. %s", err), 1)
		}
		pipeline.PRService = prService
		pipeline.Reporter = reporting.CiReporter{
			CiService:         prService,
			PrNumber:          event.PRNumber,
			IsSupportMarkdown: true,
		}
	}

	finishRun(githubActor, pipeline)
}

func noCI() {
	slog.Info("No CI detected.")

	cfg, err := config.FromEnv()
	if err != nil {
		usage.ReportErrorAndExit("", fmt.Sprintf("Failed to parse run config. %s", err), 1)
	}
	if cfg.StackName == "" {
		usage.ReportErrorAndExit("", "No CI detected and PULUMI_STACK_NAME is not defined", 10)
	}

	pipeline := &runner.Pipeline{
		Config:   cfg,
		Event:    ci.Event{System: ci.None},
		Executor: pulumi.CLI{WorkingDir: cfg.PulumiRoot, BackendUrl: cfg.PulumiBackendUrl},
		Reporter: reporting.StdOutReporter{},
	}

	finishRun("", pipeline)
}

func finishRun(actor string, pipeline *runner.Pipeline) {
	outcome, err := pipeline.Run()
	if err != nil {
		exitCode := 6
		if errors.Is(err, runner.ErrNoStackConfigured) {
			exitCode = 1
		} else if errors.Is(err, runner.ErrReportingFailed) {
			exitCode = 7
		} else if outcome != nil && outcome.Command == "" {
			// failed before reaching the main pulumi command
			exitCode = 5
		}
		usage.ReportErrorAndExit(actor, fmt.Sprintf("Failed to run pulumi. %s", err), exitCode)
	}

	switch outcome.Resolved.Action {
	case stacks.Skip:
		usage.ReportErrorAndExit(actor, "Event is not relevant for deployment, skipping", 0)
	case stacks.NoneConfigured:
		usage.ReportErrorAndExit(actor, "No stack configured for this branch, nothing to do", 0)
	}

	usage.ReportErrorAndExit(actor, "Slipway finished successfully", 0)
}

func init() {
	rootCmd.AddCommand(defaultCmd)
}
