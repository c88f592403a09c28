// Package awsclient builds AWS SDK clients for the import function and the CLI.
package awsclient

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/resiliencehub"
)

const (
	defaultAWSRegion = "us-east-1"

	// EnvEndpoint points both clients at a local emulator.
	EnvEndpoint  = "ARH_AWS_ENDPOINT"
	envAccessKey = "ARH_AWS_ACCESS_KEY"
	envSecretKey = "ARH_AWS_SECRET_KEY"
)

type Options struct {
	Region   string
	Endpoint string
}

// OptionsFromEnv reads AWS_REGION and ARH_AWS_ENDPOINT.
func OptionsFromEnv() Options {
	return Options{
		Region:   strings.TrimSpace(os.Getenv("AWS_REGION")),
		Endpoint: strings.TrimSpace(os.Getenv(EnvEndpoint)),
	}
}

type Factory struct {
	opts Options
}

func NewFactory(opts Options) Factory {
	return Factory{opts: opts}
}

func (f Factory) ResilienceHub(ctx context.Context) (*resiliencehub.Client, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return resiliencehub.NewFromConfig(cfg, func(o *resiliencehub.Options) {
		if f.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.opts.Endpoint)
		}
	}), nil
}

func (f Factory) CloudFormation(ctx context.Context) (*cloudformation.Client, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cloudformation.NewFromConfig(cfg, func(o *cloudformation.Options) {
		if f.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.opts.Endpoint)
		}
	}), nil
}

// load falls back to defaultAWSRegion only when neither the options nor the
// shared config resolve a region.
func (f Factory) load(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, f.loadOptions()...)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.Region == "" {
		cfg.Region = defaultAWSRegion
	}
	return cfg, nil
}

func (f Factory) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if f.opts.Region != "" {
		opts = append(opts, config.WithRegion(f.opts.Region))
	}
	if f.opts.Endpoint != "" {
		creds := credentials.NewStaticCredentialsProvider(accessKey(), secretKey(), "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}
	return opts
}

func accessKey() string {
	if value := os.Getenv(envAccessKey); value != "" {
		return value
	}
	return "dummy"
}

func secretKey() string {
	if value := os.Getenv(envSecretKey); value != "" {
		return value
	}
	return "dummy"
}
