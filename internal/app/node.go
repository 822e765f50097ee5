package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pack/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/adapters/parser"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pack/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			parser.NodeID,
			telemetry.TracerNodeID,
			metrics.NodeID,
			fs.WalkerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	p, err := graft.Dep[ports.Parser](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	m, err := graft.Dep[*metrics.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, p, tracer, m, walker), nil
}
