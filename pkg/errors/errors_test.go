package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError("UNKNOWN_INPUT", "received event for unknown input", ErrUnknownInput)
	assert.Equal(t, "[UNKNOWN_INPUT] received event for unknown input: unknown target input", err.Error())

	bare := NewError("VERTEX_MISMATCH", "wrong vertex", nil)
	assert.Equal(t, "[VERTEX_MISMATCH] wrong vertex", bare.Error())
}

func TestErrorUnwrap(t *testing.T) {
	err := NewError("CONSTRUCTION_FAILED", "creator blew up", ErrConstructionFailed)
	assert.ErrorIs(t, err, ErrConstructionFailed)

	wrapped := fmt.Errorf("failed to create initializer: %w", err)
	assert.ErrorIs(t, wrapped, ErrConstructionFailed)
}

func TestIsConstruction(t *testing.T) {
	assert.True(t, IsConstruction(NewError("C", "m", ErrConstructionFailed)))
	assert.True(t, IsConstruction(NewError("N", "m", ErrInitializerNotFound)))
	assert.False(t, IsConstruction(NewError("U", "m", ErrUnknownInput)))
	assert.False(t, IsConstruction(errors.New("unrelated")))
}

func TestIsUnknownInput(t *testing.T) {
	assert.True(t, IsUnknownInput(NewError("U", "m", ErrUnknownInput)))
	assert.False(t, IsUnknownInput(ErrVertexMismatch))
}
