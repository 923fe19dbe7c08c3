package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Calculator evaluates a single "number operator number" expression, mirroring
// the arithmetic example tool named in the wire protocol's own design notes.
type Calculator struct{}

func (Calculator) Descriptor() protocol.Tool {
	return protocol.Tool{
		Name:        "calculator",
		Description: "Evaluate a simple arithmetic expression such as '2 + 2' or '4 * 6'",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "A simple arithmetic expression such as '2 + 2' or '4 * 6'",
				},
			},
			"required": []string{"expression"},
		},
	}
}

func (Calculator) Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error) {
	args, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "arguments must be an object")
	}
	expression, ok := args["expression"].(string)
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "expression parameter is required and must be a string")
	}

	result, err := evaluate(expression)
	if err != nil {
		// Execution failure: the tool ran, but the expression was bad. This is
		// reported inside the result envelope, not as a JSON-RPC error.
		return &protocol.CallToolResult{
			Content: []protocol.Content{protocol.NewTextContent(err.Error())},
			IsError: true,
		}, nil
	}

	logger.Debug("calculator:", expression, "=", result)
	return &protocol.CallToolResult{
		Content: []protocol.Content{protocol.NewTextContent(fmt.Sprintf("%g", result))},
	}, nil
}

func evaluate(expression string) (float64, error) {
	parts := strings.Fields(strings.TrimSpace(expression))
	if len(parts) != 3 {
		return 0, fmt.Errorf("expression must be in the form 'number operator number'")
	}

	num1, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid first number: %v", err)
	}
	num2, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid second number: %v", err)
	}

	switch parts[1] {
	case "+":
		return num1 + num2, nil
	case "-":
		return num1 - num2, nil
	case "*":
		return num1 * num2, nil
	case "/":
		if num2 == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return num1 / num2, nil
	default:
		return 0, fmt.Errorf("unsupported operator: %s", parts[1])
	}
}
