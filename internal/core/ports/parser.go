package ports

import "context"

// Parser extracts dependency specifiers from module source.
//
//go:generate mockgen -source=parser.go -destination=mocks/mock_parser.go -package=mocks
type Parser interface {
	// ExtractSpecifiers returns the declared specifiers in source order.
	ExtractSpecifiers(ctx context.Context, source []byte) ([]string, error)
}
