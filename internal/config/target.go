package config

import "deployfreq/internal/deploys"

// TargetConfig represents the YAML configuration for a monitored target
type TargetConfig struct {
	OrgSlug      string `yaml:"org_slug"`
	ProjectSlug  string `yaml:"project_slug"`
	PipelineName string `yaml:"pipeline_name"`
	JobName      string `yaml:"job_name"`
	Branch       string `yaml:"branch"`
}

// Config represents the root configuration structure
type Config struct {
	APIURL            string                  `yaml:"api_url"`
	AppURL            string                  `yaml:"app_url"`
	RequestTimeout    int                     `yaml:"request_timeout"` // seconds
	RequestsPerSecond float64                 `yaml:"requests_per_second"`
	DefaultTarget     string                  `yaml:"default_target"`
	Targets           map[string]TargetConfig `yaml:"targets"`
}

// Target converts a validated target configuration, applying defaults
func (tc TargetConfig) Target() deploys.Target {
	branch := tc.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	return deploys.Target{
		OrgSlug:      tc.OrgSlug,
		ProjectSlug:  tc.ProjectSlug,
		PipelineName: tc.PipelineName,
		JobName:      tc.JobName,
		Branch:       branch,
	}
}
