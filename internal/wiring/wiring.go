// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pack/internal/adapters/config"
	_ "go.trai.ch/pack/internal/adapters/fs"
	_ "go.trai.ch/pack/internal/adapters/logger"
	_ "go.trai.ch/pack/internal/adapters/metrics"
	_ "go.trai.ch/pack/internal/adapters/parser"
	_ "go.trai.ch/pack/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/pack/internal/app"
)
