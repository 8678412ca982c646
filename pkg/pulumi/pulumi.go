package pulumi

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Executor is the surface the runner drives. Every method maps onto exactly
// one pulumi CLI flow.
type Executor interface {
	Login(envs map[string]string) (string, string, error)
	Install(envs map[string]string) (string, string, error)
	SelectStack(stack string, envs map[string]string) (string, string, error)
	InitStack(stack string, envs map[string]string) (string, string, error)
	RemoveStack(stack string, envs map[string]string) (string, string, error)
	SetConfig(key string, value string, secret bool, envs map[string]string) (string, string, error)
	Preview(params []string, envs map[string]string) (string, string, error)
	Up(params []string, envs map[string]string) (string, string, error)
	Destroy(params []string, envs map[string]string) (string, string, error)
}

// CommandRunner executes a single pulumi command. Extracted so tests can
// record invocations without shelling out.
type CommandRunner interface {
	Run(workingDir string, args []string, envs map[string]string, printOutputToStdout bool) (string, string, int, error)
}

type CLI struct {
	WorkingDir string
	BackendUrl string
	Runner     CommandRunner
}

func (pl CLI) Login(envs map[string]string) (string, string, error) {
	args := []string{"login"}
	if pl.BackendUrl != "" {
		args = append(args, pl.BackendUrl)
	}
	stdout, stderr, _, err := pl.runPulumiCommand(args, true, envs)
	return stdout, stderr, err
}

func (pl CLI) Install(envs map[string]string) (string, string, error) {
	stdout, stderr, _, err := pl.runPulumiCommand([]string{"install"}, true, envs)
	return stdout, stderr, err
}

func (pl CLI) SelectStack(stack string, envs map[string]string) (string, string, error) {
	stdout, stderr, _, err := pl.runPulumiCommand([]string{"stack", "select", stack}, true, envs)
	return stdout, stderr, err
}

func (pl CLI) InitStack(stack string, envs map[string]string) (string, string, error) {
	stdout, stderr, statusCode, err := pl.runPulumiCommand([]string{"stack", "init", stack}, true, envs)
	// an already initialised review stack is selected instead, so reopening
	// a pull request does not fail the run
	if err != nil && statusCode != 0 && strings.Contains(stderr, "already exists") {
		return pl.SelectStack(stack, envs)
	}
	return stdout, stderr, err
}

func (pl CLI) RemoveStack(stack string, envs map[string]string) (string, string, error) {
	stdout, stderr, _, err := pl.runPulumiCommand([]string{"stack", "rm", "--yes", stack}, true, envs)
	return stdout, stderr, err
}

func (pl CLI) SetConfig(key string, value string, secret bool, envs map[string]string) (string, string, error) {
	args := []string{"config", "set"}
	if secret {
		args = append(args, "--secret")
	}
	args = append(args, key, value)
	// never echo secret values
	stdout, stderr, _, err := pl.runPulumiCommand(args, !secret, envs)
	return stdout, stderr, err
}

func (pl CLI) Preview(params []string, envs map[string]string) (string, string, error) {
	args := append([]string{"preview", "--diff"}, params...)
	stdout, stderr, _, err := pl.runPulumiCommand(args, true, envs)
	return stdout, stderr, err
}

func (pl CLI) Up(params []string, envs map[string]string) (string, string, error) {
	args := append([]string{"up", "--yes", "--skip-preview"}, params...)
	stdout, stderr, _, err := pl.runPulumiCommand(args, true, envs)
	return stdout, stderr, err
}

func (pl CLI) Destroy(params []string, envs map[string]string) (string, string, error) {
	args := append([]string{"destroy", "--yes"}, params...)
	stdout, stderr, _, err := pl.runPulumiCommand(args, true, envs)
	return stdout, stderr, err
}

func (pl CLI) runPulumiCommand(args []string, printOutputToStdout bool, envs map[string]string) (string, string, int, error) {
	if envs == nil {
		envs = map[string]string{}
	}
	envs["PULUMI_CI"] = "true"

	expandedArgs := make([]string, 0)
	for _, p := range args {
		s := os.ExpandEnv(p)
		s = strings.TrimSpace(s)
		if s != "" {
			expandedArgs = append(expandedArgs, s)
		}
	}

	runner := pl.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return runner.Run(pl.WorkingDir, expandedArgs, envs, printOutputToStdout)
}

type execRunner struct{}

func (execRunner) Run(workingDir string, args []string, envs map[string]string, printOutputToStdout bool) (string, string, int, error) {
	var mwout, mwerr io.Writer
	var stdout, stderr bytes.Buffer
	if printOutputToStdout {
		mwout = io.MultiWriter(os.Stdout, &stdout)
		mwerr = io.MultiWriter(os.Stderr, &stderr)
	} else {
		mwout = io.Writer(&stdout)
		mwerr = io.Writer(&stderr)
	}

	cmd := exec.Command("pulumi", args...)
	slog.Info("Running command", "command", "pulumi "+strings.Join(args, " "))
	cmd.Dir = workingDir

	env := os.Environ()
	for k, v := range envs {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env
	cmd.Stdout = mwout
	cmd.Stderr = mwerr

	err := cmd.Run()
	if err != nil {
		slog.Error("pulumi command failed", "error", err)
	}

	return stdout.String(), stderr.String(), cmd.ProcessState.ExitCode(), err
}
