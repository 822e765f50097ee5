package ports

import "context"

// Emitter writes finalized output files to a destination.
//
//go:generate mockgen -source=emitter.go -destination=mocks/mock_emitter.go -package=mocks
type Emitter interface {
	// Emit writes data under name.
	Emit(ctx context.Context, name string, data []byte) error
}
