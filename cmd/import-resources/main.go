package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/evgenyka/arh-import-stack/internal/awsclient"
	"github.com/evgenyka/arh-import-stack/internal/config"
	"github.com/evgenyka/arh-import-stack/internal/importer"
	"github.com/evgenyka/arh-import-stack/internal/logger"
)

func main() {
	log := logger.Init()

	imp, err := newImporter(context.Background(), log)
	if err != nil {
		log.Error("failed to initialize importer", "error", err)
		os.Exit(1)
	}
	lambda.Start(imp.Invoke)
}

func newImporter(ctx context.Context, log *slog.Logger) (*importer.Importer, error) {
	settings, err := config.ImporterFromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	factory := awsclient.NewFactory(awsclient.OptionsFromEnv())
	hub, err := factory.ResilienceHub(ctx)
	if err != nil {
		return nil, err
	}
	stacks, err := factory.CloudFormation(ctx)
	if err != nil {
		return nil, err
	}
	return importer.New(hub, stacks, settings, log), nil
}
