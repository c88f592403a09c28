// Package config loads and validates the stack configuration.
//
// Values are layered: built-in defaults, then the YAML file, then ARH_* environment
// variables, then CDK context. The two required inputs have no default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Application     Application `yaml:"application"`
	SourceStackName string      `yaml:"source_stack_name"`
	Function        Function    `yaml:"function"`
	Importer        Importer    `yaml:"importer"`
	Trigger         Trigger     `yaml:"trigger"`
}

type Application struct {
	Name                string            `yaml:"name"`
	Description         string            `yaml:"description"`
	AssessmentSchedule  string            `yaml:"assessment_schedule"`
	ResiliencyPolicyArn string            `yaml:"resiliency_policy_arn"`
	TemplateBody        string            `yaml:"template_body"`
	Tags                map[string]string `yaml:"tags,omitempty"`
}

type Function struct {
	AssetPath    string        `yaml:"asset_path"`
	Timeout      time.Duration `yaml:"timeout"`
	MemoryMB     int           `yaml:"memory_mb"`
	Architecture string        `yaml:"architecture"`
}

// Importer tunes the status polling performed inside the import function.
type Importer struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Resolve      bool          `yaml:"resolve"`
}

type Trigger struct {
	// ReimportOnChange registers the invoke call for the update lifecycle too.
	// Off by default: the import runs on creation only.
	ReimportOnChange bool `yaml:"reimport_on_change"`
}

func defaultTags() map[string]string {
	return map[string]string{"Environment": "Production"}
}

func Default() Config {
	return Config{
		Application: Application{
			Name:               DefaultAppName,
			Description:        DefaultAppDescription,
			AssessmentSchedule: DefaultAssessmentSchedule,
			TemplateBody:       DefaultAppTemplateBody,
			Tags:               defaultTags(),
		},
		Function: Function{
			AssetPath:    DefaultFunctionAssetPath,
			Timeout:      DefaultFunctionTimeout,
			MemoryMB:     DefaultFunctionMemoryMB,
			Architecture: DefaultFunctionArchitecture,
		},
		Importer: Importer{
			MaxAttempts:  DefaultImportMaxAttempts,
			PollInterval: DefaultImportPollInterval,
		},
	}
}

// Load reads path and overlays it on Default. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	// Tags from the file replace the defaults instead of merging into them.
	cfg.Application.Tags = nil
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Application.Tags == nil {
		cfg.Application.Tags = defaultTags()
	}
	return cfg, nil
}

// LoadOptional behaves like Load but treats a missing file as empty.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Application.ResiliencyPolicyArn) == "" {
		missing = append(missing, KeyResiliencyPolicyArn)
	}
	if strings.TrimSpace(c.SourceStackName) == "" {
		missing = append(missing, KeySourceStackName)
	}
	if len(missing) > 0 {
		return MissingInputError{Keys: missing}
	}

	if strings.TrimSpace(c.Application.Name) == "" {
		return fmt.Errorf("application.name is required")
	}
	switch c.Application.AssessmentSchedule {
	case ScheduleDaily, ScheduleDisabled:
	default:
		return fmt.Errorf("%w: %q (supported: %s, %s)",
			ErrInvalidSchedule, c.Application.AssessmentSchedule, ScheduleDaily, ScheduleDisabled)
	}
	if strings.TrimSpace(c.Application.TemplateBody) == "" {
		return fmt.Errorf("application.template_body must not be blank")
	}

	if strings.TrimSpace(c.Function.AssetPath) == "" {
		return fmt.Errorf("function.asset_path is required")
	}
	if c.Function.Timeout <= 0 || c.Function.Timeout > MaxFunctionTimeout {
		return fmt.Errorf("function.timeout must be within (0, %s]: %s", MaxFunctionTimeout, c.Function.Timeout)
	}
	if c.Function.MemoryMB < 128 {
		return fmt.Errorf("function.memory_mb must be at least 128: %d", c.Function.MemoryMB)
	}
	switch c.Function.Architecture {
	case ArchitectureARM64, ArchitectureX8664:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidArchitecture, c.Function.Architecture)
	}

	if err := c.Importer.Validate(); err != nil {
		return err
	}
	if budget := c.Importer.PollingBudget(); budget >= c.Function.Timeout {
		return fmt.Errorf("%w: worst-case polling %s must stay below function.timeout %s",
			ErrPollingBudget, budget, c.Function.Timeout)
	}
	return nil
}

func (i Importer) Validate() error {
	if i.MaxAttempts <= 0 {
		return fmt.Errorf("importer.max_attempts must be positive: %d", i.MaxAttempts)
	}
	if i.PollInterval <= 0 {
		return fmt.Errorf("importer.poll_interval must be positive: %s", i.PollInterval)
	}
	return nil
}

// PollingBudget is the longest time the importer can spend sleeping between
// status polls: one wait for the import and, when enabled, one for resolution.
func (i Importer) PollingBudget() time.Duration {
	if i.MaxAttempts <= 1 || i.PollInterval <= 0 {
		return 0
	}
	phases := 1
	if i.Resolve {
		phases = 2
	}
	return time.Duration(phases*(i.MaxAttempts-1)) * i.PollInterval
}
