package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
	"github.com/richard-senior/mcpgo/pkg/transport"
)

// HTMLToMarkdown fetches a page and converts it to Markdown so LLM clients
// can consume it without an HTML parser of their own.
type HTMLToMarkdown struct{}

func (HTMLToMarkdown) Descriptor() protocol.Tool {
	return protocol.Tool{
		Name: "html_2_markdown",
		Description: `Fetches the URL's HTML and converts it to Markdown for easier consumption by LLM clients.
Use this when the user asks for a summary of a web page, or wants to read page content as text.`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "The URL of the HTML page to convert to markdown",
				},
			},
			"required": []string{"url"},
		},
	}
}

func (HTMLToMarkdown) Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error) {
	args, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "arguments must be an object")
	}
	pageURL, ok := args["url"].(string)
	if !ok || pageURL == "" {
		return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "url parameter is required")
	}

	markdown, title, domain, err := convert(ctx, pageURL)
	if err != nil {
		return &protocol.CallToolResult{
			Content: []protocol.Content{protocol.NewTextContent(err.Error())},
			IsError: true,
		}, nil
	}

	summary := fmt.Sprintf("# %s\n\nsource: %s\n\n%s", title, domain, markdown)
	return &protocol.CallToolResult{Content: []protocol.Content{protocol.NewTextContent(summary)}}, nil
}

func convert(ctx context.Context, pageURL string) (markdown, title, domain string, err error) {
	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return "", "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	logger.Info("fetching html from:", pageURL)
	resp, err := client.Do(req)
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	domain, derr := extractDomain(pageURL)
	if derr != nil {
		logger.Warn("failed to extract domain from url:", derr)
		domain = "unknown"
	}

	markdown, err = htmltomarkdown.ConvertString(string(body), converter.WithDomain(domain))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to convert html to markdown: %w", err)
	}

	const maxLength = 10000
	if len(markdown) > maxLength {
		markdown = markdown[:maxLength] + "\n\n... (content truncated due to size)"
	}

	return markdown, extractTitle(body), domain, nil
}

// extractTitle parses the document with goquery rather than scanning for
// literal "<title>" text, so it still finds the title when the tag carries
// attributes or unusual casing.
func extractTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "No title found"
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "No title found"
	}
	return title
}

func extractDomain(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if strings.HasPrefix(rawURL, "http://") {
		return "http://" + parsed.Hostname(), nil
	}
	return "https://" + parsed.Hostname(), nil
}
