package fs

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/remake-build/remake/internal/core/domain"
)

// NodeID is the unique identifier for the normalizer Graft node.
const NodeID graft.ID = "adapter.fs"

func init() {
	graft.Register(graft.Node[*domain.Normalizer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*domain.Normalizer, error) {
			return NewNormalizer()
		},
	})
}
