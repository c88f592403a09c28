package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/stack"
)

const stackName = "ArhImportStackStack"

func main() {
	code := run(os.Stderr)
	jsii.Close()
	os.Exit(code)
}

func run(errOut io.Writer) int {
	app := awscdk.NewApp(nil)

	cfg, err := loadConfig(os.Getenv(config.EnvConfigPath), os.LookupEnv, contextLookup(app))
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		if hint := hintFor(err); hint != "" {
			_, _ = fmt.Fprintf(errOut, "Hint: %s\n", hint)
		}
		return 1
	}

	_, err = stack.NewArhImportStack(app, stackName, &stack.ArhImportStackProps{
		StackProps: awscdk.StackProps{Env: env()},
		Config:     cfg,
	})
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	app.Synth(nil)
	return 0
}

// loadConfig layers the config file, environment and CDK context, then validates.
func loadConfig(path string, lookup config.LookupFunc, ctx config.ContextFunc) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if strings.TrimSpace(path) != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(config.DefaultConfigFile)
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(lookup)
	cfg.ApplyContext(ctx)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func contextLookup(app awscdk.App) config.ContextFunc {
	return func(key string) string {
		value, ok := app.Node().TryGetContext(jsii.String(key)).(string)
		if !ok {
			return ""
		}
		return value
	}
}

func env() *awscdk.Environment {
	account := os.Getenv("CDK_DEFAULT_ACCOUNT")
	region := os.Getenv("CDK_DEFAULT_REGION")
	if account == "" || region == "" {
		return nil
	}
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}

func hintFor(err error) string {
	var missing config.MissingInputError
	if errors.As(err, &missing) {
		return "pass `-c resiliencyPolicyArn=<arn> -c sourceStackName=<name>`, set ARH_RESILIENCY_POLICY_ARN/ARH_SOURCE_STACK_NAME, or fill arh-import.yml."
	}
	return ""
}
