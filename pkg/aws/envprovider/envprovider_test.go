package envprovider

import (
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieve(t *testing.T) {

	tests := map[string]struct {
		key    string
		secret string
	}{
		"slipway prefix": {key: "SLIPWAY_AWS_ACCESS_KEY_ID", secret: "SLIPWAY_AWS_SECRET_ACCESS_KEY"},
		"no prefix":      {key: "AWS_ACCESS_KEY_ID", secret: "AWS_SECRET_ACCESS_KEY"},
		"other":          {key: "AWS_ACCESS_KEY", secret: "AWS_SECRET_KEY"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, "key")
			t.Setenv(tc.secret, "secret")
			e := EnvProvider{}
			act, _ := e.Retrieve()
			exp := credentials.Value{AccessKeyID: "key", SecretAccessKey: "secret", SessionToken: "", ProviderName: "SlipwayEnvProvider"}
			assert.Equal(t, exp, act)
		})
	}
}

type fakeRoleProvider struct {
	role string
}

func (f *fakeRoleProvider) GetKeysFromRole(role string) (*credentials.Value, error) {
	f.role = role
	return &credentials.Value{
		AccessKeyID:     "role-key",
		SecretAccessKey: "role-secret",
		SessionToken:    "role-token",
		ProviderName:    EnvProviderName,
	}, nil
}

func TestDeployEnvWithoutCredentials(t *testing.T) {
	for _, key := range []string{"SLIPWAY_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	envs, err := DeployEnv(nil)
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestDeployEnvWithStaticKeys(t *testing.T) {
	t.Setenv("SLIPWAY_AWS_ACCESS_KEY_ID", "key")
	t.Setenv("SLIPWAY_AWS_SECRET_ACCESS_KEY", "secret")

	envs, err := DeployEnv(nil)
	require.NoError(t, err)
	assert.Equal(t, "key", envs["AWS_ACCESS_KEY_ID"])
	assert.Equal(t, "secret", envs["AWS_SECRET_ACCESS_KEY"])
	assert.NotContains(t, envs, "AWS_SESSION_TOKEN")
}

func TestDeployEnvAssumesRole(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_ROLE_ARN", "arn:aws:iam::123456789012:role/deploy")

	provider := &fakeRoleProvider{}
	envs, err := DeployEnv(provider)
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:role/deploy", provider.role)
	assert.Equal(t, "role-key", envs["AWS_ACCESS_KEY_ID"])
	assert.Equal(t, "role-token", envs["AWS_SESSION_TOKEN"])
}
