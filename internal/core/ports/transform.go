package ports

import (
	"context"

	"go.trai.ch/pack/internal/core/domain"
)

//go:generate mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks

// Transform is a single loader step.
type Transform interface {
	// Name identifies the transform in fingerprints and error messages.
	Name() string
	// Apply transforms content of module id.
	Apply(ctx context.Context, content []byte, id domain.ModuleID) ([]byte, error)
}

// Chain is the ordered list of transforms selected for a module.
type Chain interface {
	// Fingerprint identifies the chain and its options. It is part of the cache key.
	Fingerprint() string
	// Opaque reports whether the raw content is not JavaScript and must not be parsed.
	Opaque() bool
	// Apply runs every transform in order.
	Apply(ctx context.Context, content []byte, id domain.ModuleID) ([]byte, error)
}

// TransformSelector selects the chain for a module from an ordered rule list.
type TransformSelector interface {
	Select(id domain.ModuleID) Chain
}
