package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/slipwayhq/slipway/pkg/ci"
	gh "github.com/slipwayhq/slipway/pkg/ci/github"
	"github.com/slipwayhq/slipway/pkg/config"
	"github.com/slipwayhq/slipway/pkg/pulumi"
	"github.com/slipwayhq/slipway/pkg/reporting"
	"github.com/slipwayhq/slipway/pkg/runner"
	"github.com/slipwayhq/slipway/pkg/usage"
	"github.com/slipwayhq/slipway/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var vipRun *viper.Viper

// ManualConfig carries the flags of the `run` command. Every flag can also
// be supplied as a SLIPWAY_* environment variable.
type ManualConfig struct {
	Stack         string `mapstructure:"stack"`
	Root          string `mapstructure:"root"`
	BackendUrl    string `mapstructure:"backend-url"`
	GithubToken   string `mapstructure:"github-token"`
	RepoNamespace string `mapstructure:"repo-namespace"`
	PRNumber      int    `mapstructure:"pr-number"`
	Reporter      string `mapstructure:"reporter"`
	Actor         string `mapstructure:"actor"`
}

func (r *ManualConfig) GetServices() (ci.PullRequestService, reporting.Reporter, error) {
	switch r.Reporter {
	case "github":
		repoOwner, repositoryName := utils.ParseRepoNamespace(r.RepoNamespace)
		prService, err := gh.ServiceProviderBasic{}.NewService(r.GithubToken, repositoryName, repoOwner)
		if err != nil {
			return nil, nil, err
		}
		reporter := reporting.CiReporter{
			CiService:         prService,
			PrNumber:          r.PRNumber,
			IsSupportMarkdown: true,
		}
		return prService, reporter, nil
	case "stdout", "":
		slog.Info("Using Stdout.")
		return nil, reporting.StdOutReporter{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown reporter: %v", r.Reporter)
	}
}

var runCmd = &cobra.Command{
	Use:   "run [preview|up|destroy]",
	Short: "Run a pulumi command against a stack, outside of a CI event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initLogger()

		var manualConfig ManualConfig
		vipRun.Unmarshal(&manualConfig)

		command := args[0]
		switch command {
		case "preview", "up", "destroy":
		default:
			usage.ReportErrorAndExit(manualConfig.Actor, "Unknown pulumi command: "+command, 1)
		}

		cfg, err := config.FromEnv()
		if err != nil {
			usage.ReportErrorAndExit(manualConfig.Actor, fmt.Sprintf("Failed to parse run config. %s", err), 1)
		}
		if manualConfig.Stack != "" {
			cfg.StackName = manualConfig.Stack
		}
		if manualConfig.Root != "" {
			cfg.PulumiRoot = manualConfig.Root
		}
		if manualConfig.BackendUrl != "" {
			cfg.PulumiBackendUrl = manualConfig.BackendUrl
		}
		if cfg.StackName == "" {
			usage.ReportErrorAndExit(manualConfig.Actor, "No stack specified, use --stack or PULUMI_STACK_NAME", 10)
		}

		prService, reporter, err := manualConfig.GetServices()
		if err != nil {
			usage.ReportErrorAndExit(manualConfig.Actor, "Unrecognised reporter: "+manualConfig.Reporter, 1)
		}

		pipeline := &runner.Pipeline{
			Config:          cfg,
			Event:           ci.Event{System: ci.None, PRNumber: manualConfig.PRNumber},
			Executor:        pulumi.CLI{WorkingDir: cfg.PulumiRoot, BackendUrl: cfg.PulumiBackendUrl},
			Reporter:        reporter,
			PRService:       prService,
			CommandOverride: command,
		}

		finishRun(manualConfig.Actor, pipeline)
	},
}

func init() {
	flags := []pflag.Flag{
		{Name: "stack", Usage: "The pulumi stack to target"},
		{Name: "root", Usage: "The directory holding the pulumi program"},
		{Name: "backend-url", Usage: "The pulumi backend to log into"},
		{Name: "github-token", Usage: "Github token (for github reporter)"},
		{Name: "repo-namespace", Usage: "The namespace of this repo"},
		{Name: "pr-number", Usage: "The PR number for reporting"},
		{Name: "reporter", Usage: "The reporter to use (defaults to stdout)"},
		{Name: "actor", Usage: "The actor of this command"},
	}

	vipRun = viper.New()
	vipRun.SetEnvPrefix("SLIPWAY")
	vipRun.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vipRun.AutomaticEnv()

	for _, flag := range flags {
		runCmd.Flags().String(flag.Name, "", flag.Usage)
		vipRun.BindPFlag(flag.Name, runCmd.Flags().Lookup(flag.Name))
	}

	rootCmd.AddCommand(runCmd)
}
