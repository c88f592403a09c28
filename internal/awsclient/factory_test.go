package awsclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, f Factory) config.LoadOptions {
	t.Helper()
	var lo config.LoadOptions
	for _, opt := range f.loadOptions() {
		require.NoError(t, opt(&lo))
	}
	return lo
}

// isolateSharedConfig points the SDK at a shared config file holding content.
func isolateSharedConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("AWS_CONFIG_FILE", path)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

func TestLoadOptionsLeaveRegionUnset(t *testing.T) {
	lo := resolve(t, NewFactory(Options{}))
	assert.Empty(t, lo.Region)
	assert.Nil(t, lo.Credentials)
}

func TestLoadFallsBackToDefaultRegion(t *testing.T) {
	isolateSharedConfig(t, "")

	cfg, err := NewFactory(Options{}).load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultAWSRegion, cfg.Region)
}

func TestLoadKeepsSharedConfigRegion(t *testing.T) {
	isolateSharedConfig(t, "[default]\nregion = eu-central-1\n")

	cfg, err := NewFactory(Options{}).load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.Region)

	cfg, err = NewFactory(Options{Region: "ap-south-1"}).load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Region)
}

func TestLoadOptionsEndpointUsesStaticCredentials(t *testing.T) {
	t.Setenv(envAccessKey, "local-key")
	t.Setenv(envSecretKey, "")

	lo := resolve(t, NewFactory(Options{Region: "eu-west-1", Endpoint: "http://localhost:4566"}))
	assert.Equal(t, "eu-west-1", lo.Region)
	require.NotNil(t, lo.Credentials)

	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local-key", creds.AccessKeyID)
	assert.Equal(t, "dummy", creds.SecretAccessKey)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", " ap-northeast-1 ")
	t.Setenv(EnvEndpoint, "http://localhost:4566")

	opts := OptionsFromEnv()
	assert.Equal(t, Options{Region: "ap-northeast-1", Endpoint: "http://localhost:4566"}, opts)
}

func TestClientsHonourEndpoint(t *testing.T) {
	f := NewFactory(Options{Region: "us-west-2", Endpoint: "http://localhost:4566"})

	rh, err := f.ResilienceHub(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rh.Options().BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *rh.Options().BaseEndpoint)

	cfn, err := f.CloudFormation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfn.Options().Region)
}
