package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ContextFunc returns the string value of a CDK context key, or "" when unset.
type ContextFunc func(key string) string

// ApplyEnv overlays ARH_* environment variables. Blank values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		return
	}
	overlay := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	overlay(EnvResiliencyPolicyArn, &c.Application.ResiliencyPolicyArn)
	overlay(EnvSourceStackName, &c.SourceStackName)
	overlay(EnvAppName, &c.Application.Name)
	overlay(EnvFunctionAssetPath, &c.Function.AssetPath)
}

// ApplyContext overlays the required inputs from CDK context.
func (c *Config) ApplyContext(get ContextFunc) {
	if get == nil {
		return
	}
	if value := strings.TrimSpace(get(KeyResiliencyPolicyArn)); value != "" {
		c.Application.ResiliencyPolicyArn = value
	}
	if value := strings.TrimSpace(get(KeySourceStackName)); value != "" {
		c.SourceStackName = value
	}
}

// ImporterEnv renders the importer settings as function environment variables.
func (c Config) ImporterEnv() map[string]string {
	return map[string]string{
		EnvImportMaxAttempts:  strconv.Itoa(c.Importer.MaxAttempts),
		EnvImportPollInterval: c.Importer.PollInterval.String(),
		EnvImportResolve:      strconv.FormatBool(c.Importer.Resolve),
	}
}

// ImporterFromEnv reads the settings written by ImporterEnv. Unset keys keep
// their defaults.
func ImporterFromEnv(lookup LookupFunc) (Importer, error) {
	importer := Default().Importer
	if lookup == nil {
		return importer, nil
	}
	if raw, ok := lookup(EnvImportMaxAttempts); ok && strings.TrimSpace(raw) != "" {
		attempts, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Importer{}, fmt.Errorf("parse %s: %w", EnvImportMaxAttempts, err)
		}
		importer.MaxAttempts = attempts
	}
	if raw, ok := lookup(EnvImportPollInterval); ok && strings.TrimSpace(raw) != "" {
		interval, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return Importer{}, fmt.Errorf("parse %s: %w", EnvImportPollInterval, err)
		}
		importer.PollInterval = interval
	}
	if raw, ok := lookup(EnvImportResolve); ok && strings.TrimSpace(raw) != "" {
		resolve, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Importer{}, fmt.Errorf("parse %s: %w", EnvImportResolve, err)
		}
		importer.Resolve = resolve
	}
	if err := importer.Validate(); err != nil {
		return Importer{}, err
	}
	return importer, nil
}
