package config

import "strings"

// Environment is the deployment the process runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps the ENV setting to an Environment. A CI run wins over
// ENV, and unknown names fall back to development.
func ParseEnvironment(name string, ci bool) Environment {
	if ci {
		return CI
	}

	switch env := Environment(strings.ToLower(strings.TrimSpace(name))); env {
	case Production, Test, CI:
		return env
	default:
		return Development
	}
}

// IsProduction reports whether gin should run in release mode
func (e Environment) IsProduction() bool {
	return e == Production
}
