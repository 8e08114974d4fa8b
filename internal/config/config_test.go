package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
api_url: https://circleci.example.com/api/v2
request_timeout: 10
requests_per_second: 2.5
default_target: sleuth
targets:
  sleuth:
    org_slug: gh/sleuth-io
    project_slug: sleuth
    pipeline_name: test-and-deploy
    job_name: deploy-prod
    branch: master
  docs:
    org_slug: gh/sleuth-io
    project_slug: docs
    pipeline_name: publish
    job_name: deploy
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployfreq.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, targets, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Expected valid config to load, got: %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d", len(targets))
	}

	sleuth := targets["sleuth"]
	if sleuth.ProjectPath() != "gh/sleuth-io/sleuth" {
		t.Errorf("Unexpected project path %q", sleuth.ProjectPath())
	}
	if sleuth.Branch != "master" {
		t.Errorf("Expected branch 'master', got %q", sleuth.Branch)
	}

	if targets["docs"].Branch != DefaultBranch {
		t.Errorf("Expected default branch %q, got %q", DefaultBranch, targets["docs"].Branch)
	}

	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.Timeout())
	}
	if cfg.AppURL != "https://app.circleci.com" {
		t.Errorf("Expected default app_url, got %q", cfg.AppURL)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("Expected 2.5 requests per second, got %g", cfg.RequestsPerSecond)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig("/nonexistent/deployfreq.yaml")
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, _, err := Parse([]byte("targets: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse YAML config") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestParse_EmptyConfig(t *testing.T) {
	_, _, err := Parse([]byte(""))
	if err == nil || !strings.Contains(err.Error(), "no targets configured") {
		t.Errorf("Expected 'no targets configured', got %v", err)
	}
}

func TestParse_SingleTargetBecomesDefault(t *testing.T) {
	cfg, _, err := Parse([]byte(`
targets:
  only:
    org_slug: gh/acme
    project_slug: api
    pipeline_name: main
    job_name: deploy
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.DefaultTarget != "only" {
		t.Errorf("Expected default target 'only', got %q", cfg.DefaultTarget)
	}
}

func TestParse_UnknownDefaultTarget(t *testing.T) {
	_, _, err := Parse([]byte(strings.Replace(validYAML, "default_target: sleuth", "default_target: missing", 1)))
	if err == nil || !strings.Contains(err.Error(), "default_target 'missing'") {
		t.Errorf("Expected unknown default_target error, got %v", err)
	}
}

func TestValidateConfig_TopLevel(t *testing.T) {
	cfg := Default()
	cfg.RequestTimeout = -1
	cfg.RequestsPerSecond = -2
	cfg.APIURL = "ftp://circleci.com"

	errors := ValidateConfig(cfg)

	for _, want := range []string{"request_timeout must be a positive integer", "requests_per_second cannot be negative", "api_url must be an http(s) URL"} {
		found := false
		for _, err := range errors {
			if strings.Contains(err, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %q error, got: %v", want, errors)
		}
	}
}

func TestValidateTargetConfig_MissingFields(t *testing.T) {
	errors := ValidateTargetConfig("broken", TargetConfig{})

	for _, field := range []string{"org_slug", "project_slug", "pipeline_name", "job_name"} {
		found := false
		for _, err := range errors {
			if strings.Contains(err, "missing required '"+field+"'") {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected missing %s error, got: %v", field, errors)
		}
	}
}

func TestValidateTargetConfig_InvalidValues(t *testing.T) {
	testCases := []struct {
		name   string
		target string
		config TargetConfig
		want   string
	}{
		{
			"bad target name", "bad/name",
			TargetConfig{OrgSlug: "gh/a", ProjectSlug: "b", PipelineName: "c", JobName: "d"},
			"target name contains invalid characters",
		},
		{
			"traversal slug", "t",
			TargetConfig{OrgSlug: "gh/../x", ProjectSlug: "b", PipelineName: "c", JobName: "d"},
			"org_slug",
		},
		{
			"branch with dash", "t",
			TargetConfig{OrgSlug: "gh/a", ProjectSlug: "b", PipelineName: "c", JobName: "d", Branch: "-main"},
			"cannot start with '-'",
		},
		{
			"job name with query", "t",
			TargetConfig{OrgSlug: "gh/a", ProjectSlug: "b", PipelineName: "c", JobName: "d?x=1"},
			"job_name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errors := ValidateTargetConfig(tc.target, tc.config)
			found := false
			for _, err := range errors {
				if strings.Contains(err, tc.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error containing %q, got: %v", tc.want, errors)
			}
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg, targets, err := Resolve(Default())
	if err != nil {
		t.Fatalf("Expected built-in config to be valid, got: %v", err)
	}

	target := targets[cfg.DefaultTarget]
	if target.OrgSlug != "gh/sleuth-io" || target.JobName != "deploy-prod" || target.Branch != "master" {
		t.Errorf("Unexpected built-in target: %+v", target)
	}
}

func TestRegistry(t *testing.T) {
	_, targets, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	registry := NewRegistry(targets, "sleuth")

	if registry.Count() != 2 {
		t.Errorf("Expected 2 targets, got %d", registry.Count())
	}

	names := registry.List()
	if len(names) != 2 || names[0] != "docs" || names[1] != "sleuth" {
		t.Errorf("Expected sorted names [docs sleuth], got %v", names)
	}

	target, err := registry.Get("")
	if err != nil {
		t.Fatalf("Expected default target, got error: %v", err)
	}
	if target.ProjectSlug != "sleuth" {
		t.Errorf("Expected default target 'sleuth', got %+v", target)
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Expected error for unknown target")
	}

	if _, err := NewRegistry(targets, "").Get(""); err == nil {
		t.Error("Expected error when no default target is configured")
	}
}
