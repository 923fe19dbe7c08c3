package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterIncrementDecrementPersistState(t *testing.T) {
	counter := NewCounter()
	ctx := context.Background()

	result, err := counter.Increment().Call(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", result.Content[0].Text)

	result, err = counter.Increment().Call(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", result.Content[0].Text)

	result, err = counter.Decrement().Call(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", result.Content[0].Text)

	result, err = counter.GetValue().Call(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", result.Content[0].Text, "get_value must not itself mutate the counter")
}

func TestCounterOperationsAreIndependentHandlers(t *testing.T) {
	counter := NewCounter()
	assert.Equal(t, "increment", counter.Increment().Descriptor().Name)
	assert.Equal(t, "decrement", counter.Decrement().Descriptor().Name)
	assert.Equal(t, "get_value", counter.GetValue().Descriptor().Name)
}
