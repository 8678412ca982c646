package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/slipwayhq/slipway/pkg/stacks"
	"gopkg.in/yaml.v3"
)

const DefaultMappingPath = ".pulumi/ci.json"

// RunConfig is everything slipway reads from the process environment.
// It is parsed once at startup; nothing else touches os.Getenv for these.
type RunConfig struct {
	GithubToken      string `env:"GITHUB_TOKEN"`
	PulumiBackendUrl string `env:"PULUMI_BACKEND_URL"`
	PulumiRoot       string `env:"PULUMI_ROOT"`
	StackName        string `env:"PULUMI_STACK_NAME"`
	MappingPath      string `env:"SLIPWAY_CI_CONFIG" envDefault:".pulumi/ci.json"`
	ReviewStacks     bool   `env:"PULUMI_REVIEW_STACKS"`
	CommentOnPR      bool   `env:"COMMENT_ON_PR" envDefault:"true"`
	SkipPreview      bool   `env:"SLIPWAY_SKIP_PREVIEW"`
	Telemetry        bool   `env:"TELEMETRY" envDefault:"true"`
}

func FromEnv() (*RunConfig, error) {
	var cfg RunConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run config from environment: %w", err)
	}
	return &cfg, nil
}

// mappingEntry accepts both the short form ("master": "acmecorp/prod") and
// the object form ("master": {"stack": "acmecorp/prod"}) used by older
// mapping files.
type mappingEntry struct {
	Stack string
}

func (e *mappingEntry) UnmarshalJSON(data []byte) error {
	var short string
	if err := json.Unmarshal(data, &short); err == nil {
		e.Stack = short
		return nil
	}
	var long struct {
		Stack string `json:"stack"`
	}
	if err := json.Unmarshal(data, &long); err != nil {
		return err
	}
	e.Stack = long.Stack
	return nil
}

func (e *mappingEntry) UnmarshalYAML(value *yaml.Node) error {
	var short string
	if err := value.Decode(&short); err == nil {
		e.Stack = short
		return nil
	}
	var long struct {
		Stack string `yaml:"stack"`
	}
	if err := value.Decode(&long); err != nil {
		return err
	}
	e.Stack = long.Stack
	return nil
}

// LoadStackMapping reads the branch-to-stack mapping file. A missing file is
// an empty mapping, not an error: slipway then reports that no stack is
// configured instead of failing the build.
func LoadStackMapping(path string) (stacks.Mapping, error) {
	if path == "" {
		path = DefaultMappingPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stacks.Mapping{}, nil
		}
		return nil, fmt.Errorf("failed to read stack mapping %s: %w", path, err)
	}

	entries := map[string]mappingEntry{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse stack mapping %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse stack mapping %s: %w", path, err)
		}
	}

	mapping := make(stacks.Mapping, len(entries))
	for branch, entry := range entries {
		mapping[branch] = entry.Stack
	}
	return mapping, nil
}

const secretEnvPrefix = "PULUMI_SECRET_"

// CollectSecretsFromEnv gathers PULUMI_SECRET_<NAME> variables to be set as
// stack secrets before the main pulumi invocation. Keys are lowercased, so
// PULUMI_SECRET_DB_PASSWORD becomes the config key "db_password".
func CollectSecretsFromEnv() map[string]string {
	secrets := map[string]string{}
	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, secretEnvPrefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(entry, secretEnvPrefix), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		secrets[strings.ToLower(parts[0])] = parts[1]
	}
	return secrets
}
