package ports

import (
	"context"

	"go.trai.ch/pack/internal/core/domain"
)

// SourceReader reads the raw content of modules.
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceReader interface {
	Read(ctx context.Context, id domain.ModuleID) ([]byte, error)
}
