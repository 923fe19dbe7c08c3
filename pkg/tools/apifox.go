package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
	"github.com/richard-senior/mcpgo/pkg/transport"
)

const apifoxBaseURL = "https://api.apifox.com/api"

// ApifoxExportTool proxies a single named Apifox operation - exporting a
// project's OpenAPI document - to an authenticated HTTP call, grounded on
// the reference implementation's own Apifox example server. A bearer token
// is required; it is supplied at construction, never taken from tool
// arguments, so the same credential-handling discipline the server's own
// transport layer uses for its bearer token applies here too.
type ApifoxExportTool struct {
	AccessToken string
}

func (t ApifoxExportTool) Descriptor() protocol.Tool {
	return protocol.Tool{
		Name:        "apifox_export_openapi",
		Description: "Export an Apifox project's OpenAPI document as JSON",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"projectId":  map[string]any{"type": "string"},
				"endpointId": map[string]any{"type": "string"},
			},
			"required": []string{"projectId", "endpointId"},
		},
	}
}

func (t ApifoxExportTool) Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error) {
	args, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "arguments must be an object")
	}
	projectID, _ := args["projectId"].(string)
	endpointID, _ := args["endpointId"].(string)
	if projectID == "" || endpointID == "" {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "projectId and endpointId are required")
	}

	body, err := t.exportOpenAPI(ctx, projectID, endpointID)
	if err != nil {
		return &protocol.CallToolResult{
			Content: []protocol.Content{protocol.NewTextContent(err.Error())},
			IsError: true,
		}, nil
	}

	return &protocol.CallToolResult{Content: []protocol.Content{protocol.NewTextContent(body)}}, nil
}

func (t ApifoxExportTool) exportOpenAPI(ctx context.Context, projectID, endpointID string) (string, error) {
	url := fmt.Sprintf("%s/v1/projects/%s/export-openapi", apifoxBaseURL, projectID)
	payload, _ := json.Marshal(map[string]any{
		"projectId":              projectID,
		"type":                   2,
		"format":                 "json",
		"version":                "3.0",
		"apiDetailId":            []string{endpointID},
		"includeTags":            []string{},
		"excludeTags":            []string{},
		"checkedFolder":          []string{},
		"selectedEnvironments":   []string{},
		"excludeExtension":       true,
		"excludeTagsWithFolder":  true,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Apifox-Version", "2024-03-28")
	req.Header.Set("X-Project-Id", projectID)
	req.Header.Set("Authorization", "Bearer "+t.AccessToken)

	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach apifox: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("apifox export failed with status", resp.StatusCode)
		return "", fmt.Errorf("apifox returned status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", err
	}
	return buf.String(), nil
}
