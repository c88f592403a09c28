package config

import "time"

const (
	// Application
	DefaultAppName            = "MyResilienceApp"
	DefaultAppDescription     = "Resilience configuration for my application"
	DefaultAssessmentSchedule = ScheduleDaily
	DefaultAppTemplateBody    = `{"Resources":{}}`

	// Import function
	DefaultFunctionAssetPath    = "build/import-resources"
	DefaultFunctionTimeout      = 10 * time.Minute
	DefaultFunctionMemoryMB     = 128
	DefaultFunctionArchitecture = ArchitectureARM64
	MaxFunctionTimeout          = 15 * time.Minute

	// Importer polling
	DefaultImportMaxAttempts  = 20
	DefaultImportPollInterval = 30 * time.Second

	// Files
	DefaultConfigFile = "arh-import.yml"

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

const (
	ScheduleDaily    = "Daily"
	ScheduleDisabled = "Disabled"

	ArchitectureARM64 = "arm64"
	ArchitectureX8664 = "x86_64"
)

// Required input names as they appear in CDK context.
const (
	KeyResiliencyPolicyArn = "resiliencyPolicyArn"
	KeySourceStackName     = "sourceStackName"
)

// Environment overrides read by the CDK app and the CLI.
const (
	EnvConfigPath          = "ARH_CONFIG"
	EnvResiliencyPolicyArn = "ARH_RESILIENCY_POLICY_ARN"
	EnvSourceStackName     = "ARH_SOURCE_STACK_NAME"
	EnvAppName             = "ARH_APP_NAME"
	EnvFunctionAssetPath   = "ARH_FUNCTION_ASSET_PATH"
)

// Environment passed to the import function.
const (
	EnvImportMaxAttempts  = "ARH_IMPORT_MAX_ATTEMPTS"
	EnvImportPollInterval = "ARH_IMPORT_POLL_INTERVAL"
	EnvImportResolve      = "ARH_IMPORT_RESOLVE"
)
