package envprovider

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
)

// EnvProviderName provides a name of Env provider
const EnvProviderName = "SlipwayEnvProvider"

var (
	// ErrAccessKeyIDNotFound is returned when the AWS Access Key ID can't be
	// found in the process's environment.
	ErrAccessKeyIDNotFound = awserr.New("EnvAccessKeyNotFound", "SLIPWAY_AWS_ACCESS_KEY_ID or AWS_ACCESS_KEY_ID or AWS_ACCESS_KEY not found in environment", nil)

	// ErrSecretAccessKeyNotFound is returned when the AWS Secret Access Key
	// can't be found in the process's environment.
	ErrSecretAccessKeyNotFound = awserr.New("EnvSecretNotFound", "SLIPWAY_AWS_SECRET_ACCESS_KEY or AWS_SECRET_ACCESS_KEY or AWS_SECRET_KEY not found in environment", nil)

	ErrRoleNotValid = awserr.New("EnvRoleNotValid", "AWS_ROLE_ARN not valid", nil)
)

// A EnvProvider retrieves credentials from the environment variables of the
// running process, preferring the slipway-scoped variables so the entrypoint
// can hold deploy credentials separate from the rest of the job. Environment
// credentials never expire.
//
// Environment variables used:
//
// * Access Key ID:     SLIPWAY_AWS_ACCESS_KEY_ID, AWS_ACCESS_KEY_ID or AWS_ACCESS_KEY
//
// * Secret Access Key: SLIPWAY_AWS_SECRET_ACCESS_KEY, AWS_SECRET_ACCESS_KEY or AWS_SECRET_KEY
type EnvProvider struct {
	retrieved bool
}

type RoleProvider interface {
	GetKeysFromRole(role string) (*credentials.Value, error)
}

type AwsRoleProvider struct{}

func (a AwsRoleProvider) GetKeysFromRole(role string) (*credentials.Value, error) {

	session, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("GetKeysFromRole: could not create aws session, %v", err)
	}

	stsService := sts.New(session, &awssdk.Config{})

	params := &sts.AssumeRoleInput{
		RoleArn:         awssdk.String(role),
		RoleSessionName: awssdk.String(EnvProviderName),
		ExternalId:      awssdk.String(EnvProviderName),
	}

	resp, err := stsService.AssumeRole(params)
	if err != nil {
		slog.Error("error in GetKeysFromRole", "error", err)
		return nil, ErrRoleNotValid
	}

	return &credentials.Value{
		AccessKeyID:     *resp.Credentials.AccessKeyId,
		SecretAccessKey: *resp.Credentials.SecretAccessKey,
		SessionToken:    *resp.Credentials.SessionToken,
		ProviderName:    EnvProviderName,
	}, nil
}

// Retrieve retrieves the keys from the environment.
func (e *EnvProvider) Retrieve() (credentials.Value, error) {
	e.retrieved = false
	//assign id from env vars
	idEnvVars := []string{"SLIPWAY_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY"}
	id, err := assignEnv(idEnvVars)
	if err != nil {
		return credentials.Value{ProviderName: EnvProviderName}, ErrAccessKeyIDNotFound
	}

	//assign secret from env vars
	secretEnvVars := []string{"SLIPWAY_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY", "AWS_SECRET_KEY"}
	secret, err := assignEnv(secretEnvVars)
	if err != nil {
		return credentials.Value{ProviderName: EnvProviderName}, ErrSecretAccessKeyNotFound
	}

	e.retrieved = true
	return credentials.Value{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		ProviderName:    EnvProviderName,
	}, nil
}

// IsExpired returns if the credentials have been retrieved.
func (e *EnvProvider) IsExpired() bool {
	return !e.retrieved
}

// DeployEnv resolves the credentials this provider knows about into the env
// map handed to the pulumi child process. If AWS_ROLE_ARN is set the static
// keys are swapped for short-lived role credentials first. A run without any
// AWS credentials is fine: the env map is returned unchanged.
func DeployEnv(roleProvider RoleProvider) (map[string]string, error) {
	provider := EnvProvider{}
	value, err := provider.Retrieve()
	if err != nil {
		if errors.Is(err, ErrAccessKeyIDNotFound) || errors.Is(err, ErrSecretAccessKeyNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	if role := os.Getenv("AWS_ROLE_ARN"); role != "" {
		if roleProvider == nil {
			roleProvider = AwsRoleProvider{}
		}
		roleValue, err := roleProvider.GetKeysFromRole(role)
		if err != nil {
			return nil, err
		}
		value = *roleValue
	}

	envs := map[string]string{
		"AWS_ACCESS_KEY_ID":     value.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": value.SecretAccessKey,
	}
	if value.SessionToken != "" {
		envs["AWS_SESSION_TOKEN"] = value.SessionToken
	}
	return envs, nil
}

// Assign first non-nil env var
func assignEnv(envVars []string) (string, error) {
	var v string
	for _, envVar := range envVars {
		if value, ok := os.LookupEnv(envVar); ok {
			v = value
			return v, nil
		}
	}
	return "", errors.New("not found")
}
