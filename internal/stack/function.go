package stack

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/evgenyka/arh-import-stack/internal/config"
)

// ManagedPolicyName is the AWS managed baseline policy; the name is spelled as AWS publishes it.
const ManagedPolicyName = "AWSResilienceHubAsssessmentExecutionPolicy"

// ImportActions are granted to the function on every resource.
var ImportActions = []string{
	"resiliencehub:ImportResourcesToDraftAppVersion",
	"resiliencehub:ResolveAppVersionResources",
	"resiliencehub:DescribeDraftAppVersionResourcesImportStatus",
	"resiliencehub:ListAppVersionResources",
	"resiliencehub:DescribeAppVersionResourcesResolutionStatus",
}

func newImportFunction(scope constructs.Construct, cfg config.Config) awslambda.Function {
	fn := awslambda.NewFunction(scope, jsii.String(FunctionID), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: architecture(cfg.Function.Architecture),
		Description:  jsii.String("Import resources into Resilience Hub Application"),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String(cfg.Function.AssetPath), nil),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(cfg.Function.Timeout.Seconds())),
		MemorySize:   jsii.Number(float64(cfg.Function.MemoryMB)),
		Environment:  stringMap(cfg.ImporterEnv()),
	})

	fn.Role().AddManagedPolicy(awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String(ManagedPolicyName)))
	fn.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings(ImportActions...),
		Resources: jsii.Strings("*"),
	}))
	return fn
}

func architecture(name string) awslambda.Architecture {
	if name == config.ArchitectureX8664 {
		return awslambda.Architecture_X86_64()
	}
	return awslambda.Architecture_ARM_64()
}
