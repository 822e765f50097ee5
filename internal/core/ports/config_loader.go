package ports

import "go.trai.ch/pack/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration starting at cwd, merges the overlay for env
	// (if non-empty) and returns the validated configuration.
	Load(cwd, env string) (*domain.Config, error)

	// Effective returns the merged configuration tree as YAML, keys in
	// first-seen order.
	Effective(cwd, env string) ([]byte, error)
}
