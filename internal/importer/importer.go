// Package importer imports a CloudFormation stack's resources into the draft
// version of a Resilience Hub application and resolves them.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/resiliencehub"
	"github.com/aws/aws-sdk-go-v2/service/resiliencehub/types"

	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/payload"
)

const (
	draftVersion = "draft"

	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"

	opImport  = "Import resources"
	opResolve = "Resolve resources"
)

type ResilienceHubAPI interface {
	ImportResourcesToDraftAppVersion(ctx context.Context, in *resiliencehub.ImportResourcesToDraftAppVersionInput, optFns ...func(*resiliencehub.Options)) (*resiliencehub.ImportResourcesToDraftAppVersionOutput, error)
	DescribeDraftAppVersionResourcesImportStatus(ctx context.Context, in *resiliencehub.DescribeDraftAppVersionResourcesImportStatusInput, optFns ...func(*resiliencehub.Options)) (*resiliencehub.DescribeDraftAppVersionResourcesImportStatusOutput, error)
	ResolveAppVersionResources(ctx context.Context, in *resiliencehub.ResolveAppVersionResourcesInput, optFns ...func(*resiliencehub.Options)) (*resiliencehub.ResolveAppVersionResourcesOutput, error)
	DescribeAppVersionResourcesResolutionStatus(ctx context.Context, in *resiliencehub.DescribeAppVersionResourcesResolutionStatusInput, optFns ...func(*resiliencehub.Options)) (*resiliencehub.DescribeAppVersionResourcesResolutionStatusOutput, error)
	ListAppVersionResources(ctx context.Context, in *resiliencehub.ListAppVersionResourcesInput, optFns ...func(*resiliencehub.Options)) (*resiliencehub.ListAppVersionResourcesOutput, error)
}

type StackAPI interface {
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// Response is returned to the invoker. Failures are reported here rather than as
// a function error so the deployment-time trigger only observes acceptance.
type Response struct {
	Status string `json:"Status"`
	Reason string `json:"Reason,omitempty"`
}

// Result describes a completed import.
type Result struct {
	StackArn      string
	Resolved      bool
	ResourceCount int
}

type Importer struct {
	hub      ResilienceHubAPI
	stacks   StackAPI
	settings config.Importer
	log      *slog.Logger
	sleep    func(context.Context, time.Duration) error
}

func New(hub ResilienceHubAPI, stacks StackAPI, settings config.Importer, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		hub:      hub,
		stacks:   stacks,
		settings: settings,
		log:      log,
		sleep:    sleepContext,
	}
}

// Invoke is the function entry point: it validates the raw event and handles it.
func (i *Importer) Invoke(ctx context.Context, raw json.RawMessage) (Response, error) {
	i.log.Info("received event", "event", string(raw))
	event, err := payload.Parse(raw)
	if err != nil {
		i.log.Error("rejecting event", "error", err)
		return Response{Status: StatusFailed, Reason: err.Error()}, nil
	}
	return i.Handle(ctx, event), nil
}

func (i *Importer) Handle(ctx context.Context, event payload.Event) Response {
	if event.RequestType == payload.RequestDelete {
		return Response{Status: StatusSuccess, Reason: "Delete event - no action required"}
	}
	props := event.ResourceProperties
	result, err := i.Import(ctx, props.AppArn, props.SourceStackName)
	if err != nil {
		i.log.Error("import failed", "app_arn", props.AppArn, "source_stack", props.SourceStackName, "error", err)
		return Response{Status: StatusFailed, Reason: err.Error()}
	}
	i.log.Info("import complete",
		"app_arn", props.AppArn,
		"stack_arn", result.StackArn,
		"resolved", result.Resolved,
		"resources", result.ResourceCount,
	)
	return Response{Status: StatusSuccess}
}

// Import runs the import and, when enabled, the resolution of the draft version.
// Resolution problems are logged and do not fail the import.
func (i *Importer) Import(ctx context.Context, appArn, sourceStackName string) (Result, error) {
	stackArn, err := i.stackArn(ctx, sourceStackName)
	if err != nil {
		return Result{}, err
	}

	_, err = i.hub.ImportResourcesToDraftAppVersion(ctx, &resiliencehub.ImportResourcesToDraftAppVersionInput{
		AppArn:     aws.String(appArn),
		SourceArns: []string{stackArn},
	})
	if err != nil {
		return Result{}, fmt.Errorf("import resources to draft app version: %w", err)
	}

	err = i.waitFor(ctx, opImport, func(ctx context.Context) (string, string, error) {
		out, err := i.hub.DescribeDraftAppVersionResourcesImportStatus(ctx, &resiliencehub.DescribeDraftAppVersionResourcesImportStatusInput{
			AppArn: aws.String(appArn),
		})
		if err != nil {
			return "", "", fmt.Errorf("describe import status: %w", err)
		}
		return string(out.Status), aws.ToString(out.ErrorMessage), nil
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{StackArn: stackArn}
	if !i.settings.Resolve {
		return result, nil
	}
	count, err := i.resolve(ctx, appArn)
	if err != nil {
		i.log.Warn("resolve after import failed", "app_arn", appArn, "error", err)
		return result, nil
	}
	result.Resolved = true
	result.ResourceCount = count
	return result, nil
}

func (i *Importer) stackArn(ctx context.Context, stackName string) (string, error) {
	out, err := i.stacks.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return "", fmt.Errorf("describe stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 || strings.TrimSpace(aws.ToString(out.Stacks[0].StackId)) == "" {
		return "", fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
	}
	return aws.ToString(out.Stacks[0].StackId), nil
}

func (i *Importer) resolve(ctx context.Context, appArn string) (int, error) {
	resolved, err := i.hub.ResolveAppVersionResources(ctx, &resiliencehub.ResolveAppVersionResourcesInput{
		AppArn:     aws.String(appArn),
		AppVersion: aws.String(draftVersion),
	})
	if err != nil {
		return 0, fmt.Errorf("resolve app version resources: %w", err)
	}

	err = i.waitFor(ctx, opResolve, func(ctx context.Context) (string, string, error) {
		out, err := i.hub.DescribeAppVersionResourcesResolutionStatus(ctx, &resiliencehub.DescribeAppVersionResourcesResolutionStatusInput{
			AppArn:       aws.String(appArn),
			AppVersion:   aws.String(draftVersion),
			ResolutionId: resolved.ResolutionId,
		})
		if err != nil {
			return "", "", fmt.Errorf("describe resolution status: %w", err)
		}
		return string(out.Status), aws.ToString(out.ErrorMessage), nil
	})
	if err != nil {
		return 0, err
	}

	count, err := i.countResources(ctx, appArn, aws.ToString(resolved.ResolutionId))
	if err != nil {
		return 0, err
	}
	if count == 0 {
		i.log.Warn("no resources found after import", "app_arn", appArn)
	}
	return count, nil
}

func (i *Importer) countResources(ctx context.Context, appArn, resolutionID string) (int, error) {
	count := 0
	var next *string
	for {
		in := &resiliencehub.ListAppVersionResourcesInput{
			AppArn:     aws.String(appArn),
			AppVersion: aws.String(draftVersion),
			NextToken:  next,
		}
		if resolutionID != "" {
			in.ResolutionId = aws.String(resolutionID)
		}
		out, err := i.hub.ListAppVersionResources(ctx, in)
		if err != nil {
			return 0, fmt.Errorf("list app version resources: %w", err)
		}
		for _, resource := range out.PhysicalResources {
			i.log.Debug("resource", "logical_id", logicalID(resource.LogicalResourceId), "type", aws.ToString(resource.ResourceType))
		}
		count += len(out.PhysicalResources)
		if aws.ToString(out.NextToken) == "" {
			return count, nil
		}
		next = out.NextToken
	}
}

func logicalID(id *types.LogicalResourceId) string {
	if id == nil {
		return ""
	}
	return aws.ToString(id.Identifier)
}

// IsTerminal reports whether err came from a terminal service status rather
// than a transport problem.
func IsTerminal(err error) bool {
	var failed StatusFailedError
	var timeout StatusTimeoutError
	return errors.As(err, &failed) || errors.As(err, &timeout)
}
