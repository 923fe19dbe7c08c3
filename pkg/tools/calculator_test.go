package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorCallSuccess(t *testing.T) {
	result, err := Calculator{}.Call(context.Background(), map[string]interface{}{"expression": "2 + 2"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "4", result.Content[0].Text)
}

func TestCalculatorDivisionByZeroIsIsErrorEnvelope(t *testing.T) {
	result, err := Calculator{}.Call(context.Background(), map[string]interface{}{"expression": "1 / 0"})
	require.NoError(t, err, "execution failures are reported via IsError, not a Go error")
	assert.True(t, result.IsError)
}

func TestCalculatorMissingArgumentIsProtocolError(t *testing.T) {
	_, err := Calculator{}.Call(context.Background(), map[string]interface{}{})
	assert.Error(t, err, "a missing required argument is a protocol-level failure")
}

func TestCalculatorRejectsNonObjectArguments(t *testing.T) {
	_, err := Calculator{}.Call(context.Background(), "not an object")
	assert.Error(t, err)
}

func TestEvaluateOperators(t *testing.T) {
	cases := map[string]float64{
		"2 + 2": 4,
		"5 - 3": 2,
		"4 * 6": 24,
		"9 / 3": 3,
	}
	for expr, want := range cases {
		got, err := evaluate(expr)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
