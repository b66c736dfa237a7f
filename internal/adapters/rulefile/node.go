package rulefile

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/remake-build/remake/internal/adapters/fs"
	"github.com/remake-build/remake/internal/adapters/logger"
	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// NodeID is the unique identifier for the rule loader Graft node.
const NodeID graft.ID = "adapter.rulefile"

func init() {
	graft.Register(graft.Node[ports.RuleLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.RuleLoader, error) {
			norm, err := graft.Dep[*domain.Normalizer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(norm, log), nil
		},
	})
}
