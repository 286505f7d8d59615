package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/blobscan"
	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/jssplit"
	"github.com/wehubfusion/Talaria/pkg/initializer/initializers/staticsplit"
)

func TestNewRegistryHasAllBuiltins(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{staticsplit.Name, jssplit.Name, blobscan.Name} {
		assert.True(t, registry.HasCreator(name), name)
	}
	assert.Len(t, registry.RegisteredNames(), 3)
}
