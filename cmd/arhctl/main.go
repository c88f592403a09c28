package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/evgenyka/arh-import-stack/internal/awsclient"
	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/importer"
	"github.com/evgenyka/arh-import-stack/internal/logger"
	"github.com/evgenyka/arh-import-stack/internal/payload"
)

type CLI struct {
	Validate ValidateCmd `cmd:"" help:"Validate stack configuration and required inputs"`
	Payload  PayloadCmd  `cmd:"" help:"Render the import function invocation payload"`
	Import   ImportCmd   `cmd:"" help:"Import a stack into an application draft version from this machine"`
}

type InputFlags struct {
	Config    string `name:"config" help:"Path to stack config (default: arh-import.yml when present)"`
	PolicyArn string `name:"policy-arn" help:"Resiliency policy ARN (overrides config)"`
	Source    string `name:"source-stack" help:"Source CloudFormation stack name (overrides config)"`
}

type ValidateCmd struct {
	InputFlags `embed:""`
}

type PayloadCmd struct {
	InputFlags `embed:""`
	AppArn string `name:"app-arn" required:"" help:"Application ARN to embed in the payload"`
}

type ImportCmd struct {
	AppArn       string        `name:"app-arn" required:"" help:"Resilience Hub application ARN"`
	Source       string        `name:"source-stack" required:"" help:"Source CloudFormation stack name"`
	Region       string        `name:"region" help:"AWS region (default: AWS_REGION)"`
	Endpoint     string        `name:"endpoint" help:"Override AWS endpoint (local emulators)"`
	MaxAttempts  int           `name:"max-attempts" default:"20" help:"Status polls before giving up"`
	PollInterval time.Duration `name:"poll-interval" default:"30s" help:"Delay between status polls"`
	NoResolve    bool          `name:"no-resolve" help:"Skip resolving the draft version after import"`
}

type kongExitCode int

type ImportInput struct {
	AppArn          string
	SourceStackName string
	Client          awsclient.Options
	Settings        config.Importer
}

type commandDeps struct {
	executeImport func(context.Context, ImportInput) (importer.Result, error)
	lookupEnv     config.LookupFunc
	out           io.Writer
	errOut        io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], defaultDeps()))
}

func defaultDeps() commandDeps {
	return commandDeps{
		executeImport: executeImport,
		lookupEnv:     os.LookupEnv,
		out:           os.Stdout,
		errOut:        os.Stderr,
	}
}

func run(args []string, deps commandDeps) (exitCode int) {
	out := deps.out
	if out == nil {
		out = os.Stdout
	}
	errOut := deps.errOut
	if errOut == nil {
		errOut = os.Stderr
	}
	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name("arhctl"),
		kong.Description("Inspect and run Resilience Hub stack imports."),
		kong.Writers(out, errOut),
		kong.Exit(func(code int) {
			panic(kongExitCode(code))
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: initialize command parser: %v\n", err)
		return 1
	}
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		code, ok := recovered.(kongExitCode)
		if !ok {
			panic(recovered)
		}
		exitCode = int(code)
	}()
	ctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		_, _ = fmt.Fprintln(errOut, "Hint: run `arhctl --help`, `arhctl validate --help`, `arhctl payload --help`, or `arhctl import --help`.")
		return 1
	}

	switch ctx.Command() {
	case "validate":
		err = runValidate(cli.Validate, deps, out)
	case "payload":
		err = runPayload(cli.Payload, deps, out)
	case "import":
		err = runImport(cli.Import, deps, out)
	default:
		_, _ = fmt.Fprintf(errOut, "Error: unsupported command: %s\n", ctx.Command())
		_, _ = fmt.Fprintln(errOut, "Hint: run `arhctl --help`.")
		return 1
	}
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		_, _ = fmt.Fprintf(errOut, "Hint: %s\n", hintFor(ctx.Command(), err))
		return 1
	}
	return 0
}

func (f InputFlags) load(lookup config.LookupFunc) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if strings.TrimSpace(f.Config) != "" {
		cfg, err = config.Load(f.Config)
	} else {
		cfg, err = config.LoadOptional(config.DefaultConfigFile)
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(lookup)
	cfg.ApplyContext(func(key string) string {
		switch key {
		case config.KeyResiliencyPolicyArn:
			return f.PolicyArn
		case config.KeySourceStackName:
			return f.Source
		}
		return ""
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runValidate(cmd ValidateCmd, deps commandDeps, out io.Writer) error {
	cfg, err := cmd.load(deps.lookupEnv)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "application: %s (%s)\n", cfg.Application.Name, cfg.Application.AssessmentSchedule)
	_, _ = fmt.Fprintf(out, "resiliency policy: %s\n", cfg.Application.ResiliencyPolicyArn)
	_, _ = fmt.Fprintf(out, "source stack: %s\n", cfg.SourceStackName)
	_, _ = fmt.Fprintf(out, "function: %s (timeout=%s)\n", cfg.Function.AssetPath, cfg.Function.Timeout)
	_, _ = fmt.Fprintln(out, "configuration is valid")
	return nil
}

func runPayload(cmd PayloadCmd, deps commandDeps, out io.Writer) error {
	cfg, err := cmd.load(deps.lookupEnv)
	if err != nil {
		return err
	}
	body, err := payload.New(payload.RequestCreate, cmd.AppArn, cfg.SourceStackName).Marshal()
	if err != nil {
		return err
	}
	token, err := payload.IdentityToken(payload.Identity{
		AppName:         cfg.Application.Name,
		SourceStackName: cfg.SourceStackName,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, body)
	_, _ = fmt.Fprintf(out, "identity token: %s\n", token)
	return nil
}

func runImport(cmd ImportCmd, deps commandDeps, out io.Writer) error {
	execImport := deps.executeImport
	if execImport == nil {
		execImport = executeImport
	}
	settings := config.Importer{
		MaxAttempts:  cmd.MaxAttempts,
		PollInterval: cmd.PollInterval,
		Resolve:      !cmd.NoResolve,
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := execImport(ctx, ImportInput{
		AppArn:          cmd.AppArn,
		SourceStackName: cmd.Source,
		Client:          awsclient.Options{Region: cmd.Region, Endpoint: cmd.Endpoint},
		Settings:        settings,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "imported %s into %s\n", result.StackArn, cmd.AppArn)
	if result.Resolved {
		_, _ = fmt.Fprintf(out, "resolved draft version: resources=%d\n", result.ResourceCount)
	}
	return nil
}

func executeImport(ctx context.Context, input ImportInput) (importer.Result, error) {
	opts := input.Client
	if opts.Region == "" {
		opts.Region = awsclient.OptionsFromEnv().Region
	}
	factory := awsclient.NewFactory(opts)
	hub, err := factory.ResilienceHub(ctx)
	if err != nil {
		return importer.Result{}, err
	}
	stacks, err := factory.CloudFormation(ctx)
	if err != nil {
		return importer.Result{}, err
	}
	return importer.New(hub, stacks, input.Settings, logger.Init()).Import(ctx, input.AppArn, input.SourceStackName)
}

func hintFor(command string, err error) string {
	var missing config.MissingInputError
	switch {
	case errors.As(err, &missing):
		return "pass `--policy-arn` and `--source-stack`, or set them in arh-import.yml."
	case errors.Is(err, importer.ErrStackNotFound):
		return "confirm `--source-stack` names a deployed CloudFormation stack in the selected region."
	case importer.IsTerminal(err):
		return "inspect the application's draft version in the Resilience Hub console."
	default:
		return fmt.Sprintf("run `arhctl %s --help` for required arguments.", command)
	}
}
