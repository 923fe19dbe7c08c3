package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Screenshot drives a headless Chromium page and returns a base64 PNG of it
// as image Content - the only tool in this package that produces image
// content, so it is what exercises protocol.NewImageContent's validation in
// practice rather than only in a unit test.
type Screenshot struct {
	once sync.Once
	pw   *playwright.Playwright
	err  error
}

func NewScreenshotTool() *Screenshot { return &Screenshot{} }

func (s *Screenshot) Descriptor() protocol.Tool {
	return protocol.Tool{
		Name:        "capture_screenshot",
		Description: "Render a URL in a headless browser and return a PNG screenshot",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "Page to render"},
			},
			"required": []string{"url"},
		},
	}
}

func (s *Screenshot) ensurePlaywright() (*playwright.Playwright, error) {
	s.once.Do(func() {
		s.pw, s.err = playwright.Run()
	})
	return s.pw, s.err
}

func (s *Screenshot) Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error) {
	args, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "arguments must be an object")
	}
	pageURL, ok := args["url"].(string)
	if !ok || pageURL == "" {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "url parameter is required")
	}

	png, err := s.capture(pageURL)
	if err != nil {
		return &protocol.CallToolResult{
			Content: []protocol.Content{protocol.NewTextContent(err.Error())},
			IsError: true,
		}, nil
	}

	content, err := protocol.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png")
	if err != nil {
		return nil, protocol.NewToolError(protocol.ToolExecutionError, "produced an invalid image: %v", err)
	}
	return &protocol.CallToolResult{Content: []protocol.Content{content}}, nil
}

func (s *Screenshot) capture(pageURL string) ([]byte, error) {
	pw, err := s.ensurePlaywright()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if _, err := page.Goto(pageURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}

	png, err := page.Screenshot(playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypePng})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	logger.Debug("captured screenshot of", pageURL, "bytes:", len(png))
	return png, nil
}
