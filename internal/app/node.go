package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/remake-build/remake/internal/adapters/config" //nolint:depguard // Wired in app layer
	"github.com/remake-build/remake/internal/adapters/depstore"
	"github.com/remake-build/remake/internal/adapters/fs"
	"github.com/remake-build/remake/internal/adapters/ipc"
	"github.com/remake-build/remake/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"github.com/remake-build/remake/internal/adapters/rulefile"
	"github.com/remake-build/remake/internal/adapters/shell"
	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			rulefile.NodeID,
			depstore.NodeID,
			shell.NodeID,
			ipc.ListenerNodeID,
			ipc.RequesterNodeID,
			fs.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.RuleLoader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.DependencyStore](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	listen, err := graft.Dep[ports.ListenerFactory](ctx)
	if err != nil {
		return nil, err
	}

	requester, err := graft.Dep[ports.Requester](ctx)
	if err != nil {
		return nil, err
	}

	norm, err := graft.Dep[*domain.Normalizer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, store, executor, listen, requester, norm, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log, loader), nil
}
