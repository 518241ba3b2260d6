package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCycleErrorMessage(t *testing.T) {
	err := NewCycleError("A", "B")
	assert.Equal(t, "circular dependency between packages A and B", err.Error())
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestNewResolutionErrorWraps(t *testing.T) {
	cause := errors.New("not in release manifest")
	err := NewResolutionError("left-pad", cause)

	assert.True(t, errors.Is(err, ErrResolution))
	assert.Contains(t, err.Error(), "left-pad")
	assert.Contains(t, err.Error(), "not in release manifest")

	var be *BundleError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "left-pad", be.Package)
}

func TestNewHandlerErrorCategory(t *testing.T) {
	err := NewHandlerError("styled", "client/app.less", errors.New("unexpected token"))
	assert.True(t, errors.Is(err, ErrHandler))
}

func TestNewIOErrorCategory(t *testing.T) {
	err := NewIOError("writing build/static/app.js", errors.New("disk full"))
	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, err.Error(), "disk full")
}
