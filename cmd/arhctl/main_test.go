package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/importer"
)

const (
	testPolicyArn = "arn:aws:resiliencehub:us-east-1:123456789012:resiliency-policy/abc"
	testAppArn    = "arn:aws:resiliencehub:us-east-1:123456789012:app/0f5e4b3c"
)

func newNoopDeps(out, errOut *bytes.Buffer) commandDeps {
	return commandDeps{
		executeImport: func(context.Context, ImportInput) (importer.Result, error) {
			return importer.Result{}, nil
		},
		lookupEnv: func(string) (string, bool) { return "", false },
		out:       out,
		errOut:    errOut,
	}
}

func TestRunShowsHelp(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"--help"}, newNoopDeps(&out, &errOut))
	if code != 0 {
		t.Fatalf("run returned code=%d", code)
	}
	for _, cmd := range []string{"validate", "payload", "import"} {
		if !strings.Contains(out.String(), cmd) {
			t.Fatalf("expected help output to mention %s, got: %q", cmd, out.String())
		}
	}
}

func TestRunRequiresSubcommand(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run(nil, newNoopDeps(&out, &errOut))
	if code != 1 {
		t.Fatalf("run returned code=%d", code)
	}
	if !strings.Contains(errOut.String(), "arhctl --help") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestRunValidateReportsMissingInputs(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"validate"}, newNoopDeps(&out, &errOut))
	if code != 1 {
		t.Fatalf("run returned code=%d", code)
	}
	if !strings.Contains(errOut.String(), "resiliencyPolicyArn, sourceStackName") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "--policy-arn") {
		t.Fatalf("expected hint, got: %q", errOut.String())
	}
}

func TestRunValidateAcceptsFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"validate", "--policy-arn", testPolicyArn, "--source-stack", "my-app-stack"}, newNoopDeps(&out, &errOut))
	if code != 0 {
		t.Fatalf("run returned code=%d stderr=%q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "configuration is valid") || !strings.Contains(out.String(), "my-app-stack") {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
}

func TestRunValidateReadsEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	var errOut bytes.Buffer
	deps := newNoopDeps(&out, &errOut)
	deps.lookupEnv = func(key string) (string, bool) {
		switch key {
		case config.EnvResiliencyPolicyArn:
			return testPolicyArn, true
		case config.EnvSourceStackName:
			return "env-stack", true
		}
		return "", false
	}

	if code := run([]string{"validate"}, deps); code != 0 {
		t.Fatalf("run returned code=%d stderr=%q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "env-stack") {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
}

func TestRunPayloadPrintsContract(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{
		"payload",
		"--policy-arn", testPolicyArn,
		"--source-stack", "my-app-stack",
		"--app-arn", testAppArn,
	}, newNoopDeps(&out, &errOut))
	if code != 0 {
		t.Fatalf("run returned code=%d stderr=%q", code, errOut.String())
	}
	want := `{"RequestType":"Create","ResourceProperties":{"AppArn":"` + testAppArn + `","SourceStackName":"my-app-stack"}}`
	if !strings.Contains(out.String(), want) {
		t.Fatalf("unexpected payload: %q", out.String())
	}
	if !strings.Contains(out.String(), "identity token: ImportResources-") {
		t.Fatalf("expected identity token, got: %q", out.String())
	}
}

func TestRunImportDispatchesInput(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	var got ImportInput

	deps := newNoopDeps(&out, &errOut)
	deps.executeImport = func(_ context.Context, input ImportInput) (importer.Result, error) {
		got = input
		return importer.Result{StackArn: "arn:stack", Resolved: true, ResourceCount: 4}, nil
	}

	code := run([]string{
		"import",
		"--app-arn", testAppArn,
		"--source-stack", "my-app-stack",
		"--endpoint", "http://localhost:4566",
		"--poll-interval", "5s",
		"--no-resolve",
	}, deps)
	if code != 0 {
		t.Fatalf("run returned code=%d stderr=%q", code, errOut.String())
	}
	if got.AppArn != testAppArn || got.SourceStackName != "my-app-stack" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Client.Endpoint != "http://localhost:4566" {
		t.Fatalf("endpoint=%q", got.Client.Endpoint)
	}
	want := config.Importer{MaxAttempts: 20, PollInterval: 5 * time.Second, Resolve: false}
	if got.Settings != want {
		t.Fatalf("settings=%+v want=%+v", got.Settings, want)
	}
	if !strings.Contains(out.String(), "resources=4") {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
}

func TestRunImportRequiresFlags(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"import", "--app-arn", testAppArn}, newNoopDeps(&out, &errOut))
	if code != 1 {
		t.Fatalf("run returned code=%d", code)
	}
	if !strings.Contains(errOut.String(), "--source-stack") {
		t.Fatalf("expected missing flag error, got: %q", errOut.String())
	}
}

func TestRunImportHints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{name: "missing stack", err: fmt.Errorf("%w: ghost", importer.ErrStackNotFound), hint: "deployed CloudFormation stack"},
		{name: "terminal", err: importer.StatusFailedError{Operation: "Import resources"}, hint: "Resilience Hub console"},
		{name: "other", err: errors.New("boom"), hint: "arhctl import --help"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var errOut bytes.Buffer
			deps := newNoopDeps(&out, &errOut)
			deps.executeImport = func(context.Context, ImportInput) (importer.Result, error) {
				return importer.Result{}, tt.err
			}

			code := run([]string{"import", "--app-arn", testAppArn, "--source-stack", "x"}, deps)
			if code != 1 {
				t.Fatalf("run returned code=%d", code)
			}
			if !strings.Contains(errOut.String(), "import failed") || !strings.Contains(errOut.String(), tt.hint) {
				t.Fatalf("unexpected stderr: %q", errOut.String())
			}
		})
	}
}
