package security

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxTargetNameLength bounds target names used in URLs and config keys
const MaxTargetNameLength = 64

var (
	// Safe patterns for validation
	branchPattern  = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)
	targetPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	slugPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+(/[a-zA-Z0-9_.-]+)*$`)
	jobNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 _.:/-]+$`)
)

// ValidateBranchName ensures a branch name is safe to send as a query value.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("branch name cannot start with '-'")
	}
	if !branchPattern.MatchString(branch) {
		return fmt.Errorf("branch name contains invalid characters")
	}
	return nil
}

// ValidateTargetName ensures a target name is safe for use in URLs and logs.
func ValidateTargetName(name string) error {
	if name == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if len(name) > MaxTargetNameLength {
		return fmt.Errorf("target name too long (maximum %d characters)", MaxTargetNameLength)
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("target name cannot start with '-' or '.'")
	}
	if !targetPattern.MatchString(name) {
		return fmt.Errorf("target name contains invalid characters (only a-z, A-Z, 0-9, _, - allowed)")
	}
	return nil
}

// ValidateSlug ensures an org or project slug is safe to splice into an API
// path. Slugs may contain '/' separators (e.g. gh/sleuth-io) but no empty or
// traversal segments.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug contains invalid characters or empty segments")
	}
	for _, segment := range strings.Split(slug, "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("slug contains traversal elements")
		}
	}
	return nil
}

// ValidateJobName ensures a workflow or job name is printable and bounded.
func ValidateJobName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !jobNamePattern.MatchString(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	return nil
}
