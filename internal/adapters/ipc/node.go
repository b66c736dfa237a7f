package ipc

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/remake-build/remake/internal/adapters/logger"
	"github.com/remake-build/remake/internal/core/ports"
)

// Node identifiers for the two sides of the request socket. The factory
// side hands out fresh listeners because a listener's lifetime is owned by
// one build run, not by the dependency graph.
const (
	RequesterNodeID graft.ID = "adapter.ipc.requester"
	ListenerNodeID  graft.ID = "adapter.ipc.listener"
)

func init() {
	graft.Register(graft.Node[ports.Requester]{
		ID:        RequesterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Requester, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(log), nil
		},
	})

	graft.Register(graft.Node[ports.ListenerFactory]{
		ID:        ListenerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ListenerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func() (ports.RequestListener, error) {
				return Listen(log)
			}, nil
		},
	})
}
