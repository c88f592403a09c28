package stack

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsresiliencehub"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/evgenyka/arh-import-stack/internal/config"
)

func newApplication(scope constructs.Construct, app config.Application) awsresiliencehub.CfnApp {
	return awsresiliencehub.NewCfnApp(scope, jsii.String(ApplicationID), &awsresiliencehub.CfnAppProps{
		Name:                  jsii.String(app.Name),
		Description:           jsii.String(app.Description),
		AppAssessmentSchedule: jsii.String(app.AssessmentSchedule),
		ResiliencyPolicyArn:   jsii.String(app.ResiliencyPolicyArn),
		AppTemplateBody:       jsii.String(app.TemplateBody),
		ResourceMappings:      &[]*awsresiliencehub.CfnApp_ResourceMappingProperty{},
		Tags:                  stringMap(app.Tags),
	})
}

func stringMap(in map[string]string) *map[string]*string {
	out := make(map[string]*string, len(in))
	for k, v := range in {
		out[k] = jsii.String(v)
	}
	return &out
}
