package ports

import "github.com/remake-build/remake/internal/core/domain"

// RuleLoader defines the interface for parsing a rule file.
//
//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type RuleLoader interface {
	// Load parses the rule file at path and registers every rule. Records
	// already present in deps are merged into the shared records of the
	// rules that claim their targets, so dynamic edges from earlier runs
	// survive a re-parse.
	Load(path string, deps *domain.DependencySet) (*domain.RuleSet, error)
}
