package stack

import (
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/payload"
)

// newImportTrigger invokes fn synchronously once per distinct identity token.
// Delete never invokes. The provider waits for the function, so its timeout
// leaves a minute of headroom over the function's own bound.
func newImportTrigger(
	scope constructs.Construct,
	fn awslambda.Function,
	event payload.Event,
	token string,
	cfg config.Config,
) (customresources.AwsCustomResource, error) {
	body, err := event.Marshal()
	if err != nil {
		return nil, err
	}

	call := func() *customresources.AwsSdkCall {
		return &customresources.AwsSdkCall{
			Service: jsii.String("Lambda"),
			Action:  jsii.String("invoke"),
			Parameters: map[string]interface{}{
				"FunctionName": fn.FunctionName(),
				"Payload":      jsii.String(body),
			},
			PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String(token)),
			OutputPaths:        jsii.Strings("StatusCode"),
		}
	}

	props := &customresources.AwsCustomResourceProps{
		OnCreate: call(),
		Policy: customresources.AwsCustomResourcePolicy_FromStatements(&[]awsiam.PolicyStatement{
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Actions:   jsii.Strings("lambda:InvokeFunction"),
				Resources: jsii.Strings(*fn.FunctionArn()),
			}),
		}),
		Timeout:             awscdk.Duration_Seconds(jsii.Number(providerTimeout(cfg.Function.Timeout).Seconds())),
		InstallLatestAwsSdk: jsii.Bool(false),
	}
	if cfg.Trigger.ReimportOnChange {
		props.OnUpdate = call()
	}

	trigger := customresources.NewAwsCustomResource(scope, jsii.String(TriggerID), props)
	fn.GrantInvoke(trigger.GrantPrincipal())
	trigger.Node().AddDependency(fn)
	return trigger, nil
}

func providerTimeout(functionTimeout time.Duration) time.Duration {
	timeout := functionTimeout + time.Minute
	if timeout > config.MaxFunctionTimeout {
		return config.MaxFunctionTimeout
	}
	return timeout
}
