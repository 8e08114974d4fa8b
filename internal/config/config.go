package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"deployfreq/internal/circleci"
	"deployfreq/internal/deploys"
	"deployfreq/internal/security"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch         = "main"
	DefaultRequestTimeout = 30 // seconds
	DefaultTargetName     = "sleuth"
)

// Default returns the configuration used when no config file is found: the
// production deploy job of the sleuth project
func Default() *Config {
	return &Config{
		APIURL:         circleci.DefaultBaseURL,
		AppURL:         deploys.DefaultAppURL,
		RequestTimeout: DefaultRequestTimeout,
		DefaultTarget:  DefaultTargetName,
		Targets: map[string]TargetConfig{
			DefaultTargetName: {
				OrgSlug:      "gh/sleuth-io",
				ProjectSlug:  "sleuth",
				PipelineName: "test-and-deploy",
				JobName:      "deploy-prod",
				Branch:       "master",
			},
		},
	}
}

// LoadConfig loads and validates the configuration from a YAML file
func LoadConfig(configPath string) (*Config, map[string]deploys.Target, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates YAML configuration, returning the resolved targets
func Parse(data []byte) (*Config, map[string]deploys.Target, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return Resolve(&config)
}

// Resolve validates config, fills in defaults, and builds its targets
func Resolve(config *Config) (*Config, map[string]deploys.Target, error) {
	// Initialize Targets map if it's nil (happens with empty YAML files)
	if config.Targets == nil {
		config.Targets = make(map[string]TargetConfig)
	}

	if errors := ValidateConfig(config); len(errors) > 0 {
		return nil, nil, fmt.Errorf("invalid configuration:\n%s", strings.Join(errors, "\n"))
	}

	// Apply defaults
	if config.APIURL == "" {
		config.APIURL = circleci.DefaultBaseURL
	}
	if config.AppURL == "" {
		config.AppURL = deploys.DefaultAppURL
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.DefaultTarget == "" && len(config.Targets) == 1 {
		for name := range config.Targets {
			config.DefaultTarget = name
		}
	}

	targets := make(map[string]deploys.Target, len(config.Targets))
	for name, tc := range config.Targets {
		targets[name] = tc.Target()
	}

	return config, targets, nil
}

// Timeout returns the per-request timeout
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// ValidateConfig validates the top-level settings and every target
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.RequestTimeout < 0 {
		errors = append(errors, fmt.Sprintf("  - request_timeout must be a positive integer, got %d", config.RequestTimeout))
	}
	if config.RequestsPerSecond < 0 {
		errors = append(errors, fmt.Sprintf("  - requests_per_second cannot be negative, got %g", config.RequestsPerSecond))
	}

	for _, field := range []struct{ key, value string }{{"api_url", config.APIURL}, {"app_url", config.AppURL}} {
		if field.value != "" && !strings.HasPrefix(field.value, "https://") && !strings.HasPrefix(field.value, "http://") {
			errors = append(errors, fmt.Sprintf("  - %s must be an http(s) URL, got '%s'", field.key, field.value))
		}
	}

	if len(config.Targets) == 0 {
		errors = append(errors, "  - no targets configured")
	}

	if config.DefaultTarget != "" {
		if _, ok := config.Targets[config.DefaultTarget]; !ok {
			errors = append(errors, fmt.Sprintf("  - default_target '%s' is not a configured target", config.DefaultTarget))
		}
	}

	// Sorted for stable error output
	names := make([]string, 0, len(config.Targets))
	for name := range config.Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		errors = append(errors, ValidateTargetConfig(name, config.Targets[name])...)
	}

	return errors
}

// ValidateTargetConfig validates a single target configuration
func ValidateTargetConfig(name string, tc TargetConfig) []string {
	var errors []string

	if err := security.ValidateTargetName(name); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': %v", name, err))
	}

	if tc.OrgSlug == "" {
		errors = append(errors, fmt.Sprintf("  - Target '%s': missing required 'org_slug' field", name))
	} else if err := security.ValidateSlug(tc.OrgSlug); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': org_slug: %v", name, err))
	}

	if tc.ProjectSlug == "" {
		errors = append(errors, fmt.Sprintf("  - Target '%s': missing required 'project_slug' field", name))
	} else if err := security.ValidateSlug(tc.ProjectSlug); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': project_slug: %v", name, err))
	}

	if tc.PipelineName == "" {
		errors = append(errors, fmt.Sprintf("  - Target '%s': missing required 'pipeline_name' field", name))
	} else if err := security.ValidateJobName(tc.PipelineName); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': pipeline_name: %v", name, err))
	}

	if tc.JobName == "" {
		errors = append(errors, fmt.Sprintf("  - Target '%s': missing required 'job_name' field", name))
	} else if err := security.ValidateJobName(tc.JobName); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': job_name: %v", name, err))
	}

	// Validate branch
	branch := tc.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	if err := security.ValidateBranchName(branch); err != nil {
		errors = append(errors, fmt.Sprintf("  - Target '%s': %v, got '%s'", name, err, branch))
	}

	return errors
}
