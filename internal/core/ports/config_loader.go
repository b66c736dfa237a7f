package ports

import "github.com/remake-build/remake/internal/core/domain"

// ConfigLoader defines the interface for loading tool defaults.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the defaults file from dir. A missing file yields the
	// built-in defaults.
	Load(dir string) (*domain.Config, error)
}
