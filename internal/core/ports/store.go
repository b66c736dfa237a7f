package ports

import "github.com/remake-build/remake/internal/core/domain"

// DependencyStore defines the interface for persisting dependency records
// across runs.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type DependencyStore interface {
	// Load reads the persisted records. A missing file is not an error and
	// yields an empty set.
	Load() (*domain.DependencySet, error)

	// Save writes every record group on its own line, replacing the
	// previous contents atomically enough for the next run to read.
	Save(deps *domain.DependencySet) error
}
