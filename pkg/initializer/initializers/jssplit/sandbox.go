package jssplit

import (
	"fmt"

	"github.com/dop251/goja"
)

// applySandbox removes globals a split script has no business touching.
// Scripts compute split sets from their input object; they get no host
// escape hatches.
func applySandbox(vm *goja.Runtime) error {
	dangerousGlobals := []string{
		"require",        // Node.js require
		"module",         // Node.js module
		"exports",        // Node.js exports
		"process",        // Node.js process
		"global",         // Node.js global
		"__dirname",      // Node.js __dirname
		"__filename",     // Node.js __filename
		"Buffer",         // Node.js Buffer
		"setImmediate",   // Node.js setImmediate
		"clearImmediate", // Node.js clearImmediate
	}

	for _, name := range dangerousGlobals {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	return nil
}
