package ports

import "time"

// Renderer presents build progress.
// It is fed by the telemetry bridge, decoupling span collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnSpanStart is called when a span begins.
	// parentID is empty for root spans.
	OnSpanStart(spanID, parentID, name string, start time.Time)

	// OnSpanEnd is called when a span finishes. err is nil on success.
	OnSpanEnd(spanID string, end time.Time, err error)
}
