package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/go-github/v61/github"
)

// ActionContext mirrors the GitHub Actions `github` context object, as
// exposed to the job via the GITHUB_CONTEXT env var.
type ActionContext struct {
	Action          string      `json:"action"`
	Actor           string      `json:"actor"`
	BaseRef         string      `json:"base_ref"`
	Event           interface{} `json:"event"`
	EventName       string      `json:"event_name"`
	EventPath       string      `json:"event_path"`
	HeadRef         string      `json:"head_ref"`
	Ref             string      `json:"ref"`
	RefName         string      `json:"ref_name"`
	Repository      string      `json:"repository"`
	RepositoryOwner string      `json:"repository_owner"`
	SHA             string      `json:"sha"`
}

func (c *ActionContext) UnmarshalJSON(data []byte) error {
	type Alias ActionContext
	aux := struct {
		*Alias
	}{
		Alias: (*Alias)(c),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var rawEvent json.RawMessage
	auxEvent := struct {
		Event *json.RawMessage `json:"event"`
	}{
		Event: &rawEvent,
	}
	if err := json.Unmarshal(data, &auxEvent); err != nil {
		return err
	}
	if rawEvent == nil {
		c.Event = nil
		return nil
	}

	switch c.EventName {
	case "pull_request", "pull_request_target":
		var event github.PullRequestEvent
		if err := json.Unmarshal(rawEvent, &event); err != nil {
			return err
		}
		c.Event = event
	case "push":
		var event github.PushEvent
		if err := json.Unmarshal(rawEvent, &event); err != nil {
			return err
		}
		c.Event = event
	case "workflow_dispatch":
		var event github.WorkflowDispatchEvent
		if err := json.Unmarshal(rawEvent, &event); err != nil {
			return err
		}
		c.Event = event
	default:
		return errors.New("unknown GitHub event: " + c.EventName)
	}

	return nil
}

// ParseActionContext parses the GITHUB_CONTEXT json string.
func ParseActionContext(ghContext string) (*ActionContext, error) {
	parsedContext := new(ActionContext)
	err := json.Unmarshal([]byte(ghContext), parsedContext)
	if err != nil {
		return &ActionContext{}, fmt.Errorf("error parsing GitHub context JSON: %v", err)
	}
	return parsedContext, nil
}

// ContextFromEnv builds an ActionContext from GITHUB_CONTEXT when present,
// otherwise from the individual GITHUB_* variables plus the event payload
// file at GITHUB_EVENT_PATH.
func ContextFromEnv() (*ActionContext, error) {
	if ghContext := os.Getenv("GITHUB_CONTEXT"); ghContext != "" {
		return ParseActionContext(ghContext)
	}

	eventName := os.Getenv("GITHUB_EVENT_NAME")
	if eventName == "" {
		return nil, errors.New("neither GITHUB_CONTEXT nor GITHUB_EVENT_NAME is defined")
	}
	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, errors.New("GITHUB_EVENT_PATH is not defined")
	}
	payload, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload at %s: %w", eventPath, err)
	}

	synthetic := map[string]interface{}{
		"actor":            os.Getenv("GITHUB_ACTOR"),
		"base_ref":         os.Getenv("GITHUB_BASE_REF"),
		"event":            json.RawMessage(payload),
		"event_name":       eventName,
		"event_path":       eventPath,
		"head_ref":         os.Getenv("GITHUB_HEAD_REF"),
		"ref":              os.Getenv("GITHUB_REF"),
		"ref_name":         os.Getenv("GITHUB_REF_NAME"),
		"repository":       os.Getenv("GITHUB_REPOSITORY"),
		"repository_owner": os.Getenv("GITHUB_REPOSITORY_OWNER"),
		"sha":              os.Getenv("GITHUB_SHA"),
	}
	data, err := json.Marshal(synthetic)
	if err != nil {
		return nil, err
	}
	return ParseActionContext(string(data))
}
