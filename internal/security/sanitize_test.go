package security

import (
	"strings"
	"testing"
)

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		wantErr bool
	}{
		// Valid cases
		{"main branch", "main", false},
		{"master branch", "master", false},
		{"feature branch", "feature/new-feature", false},
		{"release branch", "release/v1.0.0", false},
		{"with underscores", "my_feature_branch", false},

		// Invalid cases
		{"empty", "", true},
		{"leading dash", "-rf", true},
		{"space", "my branch", true},
		{"query injection ampersand", "main&start-date=1970-01-01", true},
		{"query injection hash", "main#frag", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranchName(tt.branch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBranchName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTargetName(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"simple", "sleuth", false},
		{"with dash", "sleuth-prod", false},
		{"with underscore", "sleuth_prod", false},
		{"with numbers", "app2", false},

		{"empty", "", true},
		{"leading dash", "-sleuth", true},
		{"leading dot", ".sleuth", true},
		{"slash", "sleuth/prod", true},
		{"traversal", "../etc", true},
		{"too long", strings.Repeat("a", MaxTargetNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetName(tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTargetName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"github org", "gh/sleuth-io", false},
		{"bitbucket org", "bb/acme", false},
		{"plain project", "sleuth", false},
		{"dotted project", "my.project", false},

		{"empty", "", true},
		{"trailing slash", "gh/sleuth-io/", true},
		{"double slash", "gh//sleuth-io", true},
		{"traversal", "gh/../admin", true},
		{"query injection", "gh/org?x=1", true},
		{"space", "gh/my org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJobName(t *testing.T) {
	tests := []struct {
		name    string
		job     string
		wantErr bool
	}{
		{"dashed", "deploy-prod", false},
		{"spaced", "test and deploy", false},
		{"namespaced", "orb/deploy:prod", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"question mark", "deploy?", true},
		{"newline", "deploy\nprod", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobName(tt.job)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJobName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
