// Command mcpclient is a small CLI driver over pkg/client: connect, list the
// server's catalog, and optionally invoke one tool - enough to exercise both
// transports by hand without writing a throwaway program each time.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/richard-senior/mcpgo/internal/config"
	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/client"
	"github.com/richard-senior/mcpgo/pkg/protocol"
	"github.com/richard-senior/mcpgo/pkg/transport"
)

func main() {
	cfg, positional, err := config.LoadClientConfig(os.Args[1:])
	if err != nil {
		logger.Fatal("failed to load config", err)
	}

	var tr transport.Transport
	if cfg.URL != "" {
		tr = transport.NewSseTransport(cfg.URL, nil, cfg.BearerToken)
	} else {
		if cfg.Command == "" {
			logger.Fatal("either -url or -command must be set")
		}
		parts := strings.Fields(cfg.Command)
		tr = transport.NewStdioTransport(parts[0], append(parts[1:], cfg.Args...), nil)
	}

	ctx := context.Background()
	handle, err := tr.Start(ctx)
	if err != nil {
		logger.Fatal("failed to start transport", err)
	}
	defer tr.Close(ctx)

	if cfg.Timeout > 0 {
		handle = transport.WithTimeout(handle, cfg.Timeout)
	}

	c := client.New(handle)
	info, err := c.Initialize(ctx, protocol.ClientInfo{Name: "mcpclient", Version: "0.1.0"})
	if err != nil {
		logger.Fatal("initialize failed", err)
	}
	fmt.Printf("connected to %s %s\n", info.ServerInfo.Name, info.ServerInfo.Version)

	tools, err := c.ListTools(ctx)
	if err != nil {
		logger.Fatal("tools/list failed", err)
	}
	for _, t := range tools.Tools {
		fmt.Printf("- %s: %s\n", t.Name, t.Description)
	}

	if len(positional) == 0 {
		return
	}

	var callArgs map[string]any
	if len(positional) > 1 {
		if err := json.Unmarshal([]byte(positional[1]), &callArgs); err != nil {
			logger.Fatal("tool arguments must be a JSON object", err)
		}
	}

	result, err := c.CallTool(ctx, positional[0], callArgs)
	if err != nil {
		logger.Fatal("tools/call failed", err)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
