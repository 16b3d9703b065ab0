package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParleyError(t *testing.T) {
	cause := context.Canceled
	err := parleyError{cause, "The request was interrupted."}

	require.Equal(t, cause.Error(), err.Error())
	require.Equal(t, "The request was interrupted.", err.Reason())
	require.ErrorIs(t, err, context.Canceled)

	// The wrapper survives further wrapping on its way up.
	wrapped := fmt.Errorf("run: %w", err)
	var pe parleyError
	require.True(t, errors.As(wrapped, &pe))
	require.Equal(t, "The request was interrupted.", pe.Reason())
	require.ErrorIs(t, wrapped, context.Canceled)
}
