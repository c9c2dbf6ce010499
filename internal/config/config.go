// Package config provides parsing, validation, and convenient access to
// project configurations that drive CI workflow generation.
//
// A project configuration is a small YAML file:
//
//	service: my-app
//	provider: github
//	repository: org/repo
//	branches:
//	  - main
//	  - develop
//	notifications:
//	  slack_webhook: https://hooks.slack.com/services/...
//
// Unknown top-level keys are ignored. All required fields are validated at
// load time; the engine never sees a partially valid configuration.
package config

import (
	"strings"
)

// Provider identifies the hosted CI provider a project targets.
type Provider string

const (
	// ProviderGitHub targets GitHub Actions.
	ProviderGitHub Provider = "github"
)

// Project is the validated project configuration. It is immutable after
// loading; components receive it by read-only reference.
type Project struct {
	// Service is the service identifier used to name the generated workflow.
	Service string `yaml:"service"`

	// Provider selects the CI provider. Only "github" is recognized.
	Provider Provider `yaml:"provider"`

	// Repository is the target repository in "owner/name" form.
	Repository string `yaml:"repository"`

	// Branches lists the branches whose pushes trigger the workflow, in the
	// order they appear in the generated document.
	Branches []string `yaml:"branches"`

	// Notifications holds optional notification settings.
	Notifications Notifications `yaml:"notifications"`
}

// Notifications holds optional notification settings.
type Notifications struct {
	// SlackWebhook is an optional Slack incoming-webhook URL notified when a
	// watched run completes.
	SlackWebhook string `yaml:"slack_webhook"`
}

// Owner returns the repository owner portion of Repository.
func (p *Project) Owner() string {
	owner, _, _ := strings.Cut(p.Repository, "/")
	return owner
}

// Name returns the repository name portion of Repository.
func (p *Project) Name() string {
	_, name, _ := strings.Cut(p.Repository, "/")
	return name
}
