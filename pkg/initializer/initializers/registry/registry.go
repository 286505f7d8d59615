// Package registry assembles an initializer registry with all built-in
// initializers registered.
package registry

import (
	"go.uber.org/zap"

	"github.com/wehubfusion/Talaria/pkg/initializer"
	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/blobscan"
	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/jssplit"
	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/staticsplit"
)

// NewRegistry creates a new initializer registry with all built-in
// initializers registered
func NewRegistry() *initializer.Registry {
	return NewRegistryWithLogger(zap.NewNop())
}

// NewRegistryWithLogger creates a pre-wired registry whose initializers log
// through the given logger
func NewRegistryWithLogger(logger *zap.Logger) *initializer.Registry {
	registry := initializer.NewRegistry()

	// Register static partition initializer
	registry.Register(staticsplit.Name, staticsplit.New)

	// Register JavaScript split initializer
	registry.Register(jssplit.Name, jssplit.New)

	// Register Azure blob scanning initializer
	registry.Register(blobscan.Name, blobscan.NewWithLogger(logger))

	return registry
}
