// Package stack declares the Resilience Hub import stack: the application, the
// function that imports a source stack into the application's draft version,
// and the one-time trigger that invokes it during deployment.
package stack

import (
	"errors"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsresiliencehub"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/payload"
)

const (
	ApplicationID = "ResilienceHubApplication"
	FunctionID    = "ImportResourcesFunction"
	TriggerID     = "ImportResources"
	OutputID      = "ApplicationArn"
)

var errNilProps = errors.New("stack props are required")

type ArhImportStackProps struct {
	awscdk.StackProps
	Config config.Config
}

type ArhImportStack struct {
	awscdk.Stack

	Application   awsresiliencehub.CfnApp
	Function      awslambda.Function
	Trigger       customresources.AwsCustomResource
	Output        awscdk.CfnOutput
	Payload       payload.Event
	IdentityToken string
}

// NewArhImportStack validates the configuration before any construct is
// created, so a missing input leaves scope untouched.
func NewArhImportStack(scope constructs.Construct, id string, props *ArhImportStackProps) (*ArhImportStack, error) {
	if props == nil {
		return nil, errNilProps
	}
	cfg := props.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	token, err := payload.IdentityToken(payload.Identity{
		AppName:         cfg.Application.Name,
		SourceStackName: cfg.SourceStackName,
	})
	if err != nil {
		return nil, err
	}

	sprops := props.StackProps
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)

	app := newApplication(stack, cfg.Application)
	fn := newImportFunction(stack, cfg)

	event := payload.New(payload.RequestCreate, *app.AttrAppArn(), cfg.SourceStackName)
	trigger, err := newImportTrigger(stack, fn, event, token, cfg)
	if err != nil {
		return nil, err
	}

	output := awscdk.NewCfnOutput(stack, jsii.String(OutputID), &awscdk.CfnOutputProps{
		Value:       app.AttrAppArn(),
		Description: jsii.String("ARN of the created Resilience Hub Application"),
	})

	return &ArhImportStack{
		Stack:         stack,
		Application:   app,
		Function:      fn,
		Trigger:       trigger,
		Output:        output,
		Payload:       event,
		IdentityToken: token,
	}, nil
}
