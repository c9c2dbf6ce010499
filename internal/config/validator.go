package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

// repositoryPattern matches "owner/name" with the character set GitHub
// accepts for owners and repository names.
var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?/[A-Za-z0-9._-]+$`)

// validate checks a decoded Project for structural correctness. It collects
// all violations so a user can fix the file in one pass.
func validate(p *Project) error {
	var violations []string

	if strings.TrimSpace(p.Service) == "" {
		violations = append(violations, "service must be a non-empty string")
	}

	switch p.Provider {
	case ProviderGitHub:
	case "":
		violations = append(violations, "provider is required")
	default:
		violations = append(violations, fmt.Sprintf("provider %q is not recognized (only %q is supported)", p.Provider, ProviderGitHub))
	}

	if p.Repository == "" {
		violations = append(violations, "repository is required")
	} else if !repositoryPattern.MatchString(p.Repository) {
		violations = append(violations, fmt.Sprintf("repository %q must be in owner/name form", p.Repository))
	}

	violations = append(violations, validateBranches(p.Branches)...)

	if hook := p.Notifications.SlackWebhook; hook != "" {
		u, err := url.Parse(hook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			violations = append(violations, fmt.Sprintf("notifications.slack_webhook %q is not a valid URL", hook))
		}
	}

	if len(violations) > 0 {
		return errors.Newf(
			errors.CodeInvalidConfig,
			"project configuration validation failed: %s",
			strings.Join(violations, "; "),
		)
	}

	return nil
}

// validateBranches checks the branch list is non-empty with no blank or
// duplicate entries. Order is preserved elsewhere; validation never reorders.
func validateBranches(branches []string) []string {
	if len(branches) == 0 {
		return []string{"branches must contain at least one entry"}
	}

	var violations []string
	seen := make(map[string]bool, len(branches))
	for i, b := range branches {
		if strings.TrimSpace(b) == "" {
			violations = append(violations, fmt.Sprintf("branches[%d] must not be empty", i))
			continue
		}
		if seen[b] {
			violations = append(violations, fmt.Sprintf("branches contains duplicate entry %q", b))
		}
		seen[b] = true
	}
	return violations
}
