// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/remake-build/remake/internal/adapters/config"
	_ "github.com/remake-build/remake/internal/adapters/depstore"
	_ "github.com/remake-build/remake/internal/adapters/fs"
	_ "github.com/remake-build/remake/internal/adapters/ipc"
	_ "github.com/remake-build/remake/internal/adapters/logger"
	_ "github.com/remake-build/remake/internal/adapters/rulefile"
	_ "github.com/remake-build/remake/internal/adapters/shell"
	// Register app nodes.
	_ "github.com/remake-build/remake/internal/app"
)
