package ports

import (
	"context"

	"go.trai.ch/pack/internal/core/domain"
)

// Resolver maps a specifier written in a module to a module identity.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type Resolver interface {
	// Resolve resolves spec as written in from. A zero from resolves relative
	// to the project root. It returns domain.ErrModuleNotFound on a miss.
	Resolve(ctx context.Context, from domain.ModuleID, spec string) (domain.ModuleID, error)
}
