package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/mcpgo/internal/config"
	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/prompts"
	"github.com/richard-senior/mcpgo/pkg/resources"
	"github.com/richard-senior/mcpgo/pkg/server"
	"github.com/richard-senior/mcpgo/pkg/tools"
)

func main() {
	cfg, err := config.LoadServerConfig(os.Args[1:])
	if err != nil {
		logger.Fatal("failed to load config", err)
	}

	logger.SetLogOutput(rune(cfg.LogOutput[0]))
	logger.SetShowDateTime(true)
	// A stdio session speaks JSON-RPC over stdout, so ordinary logging must
	// never touch it once a session is live.
	if cfg.ListenAddr == "" {
		logger.SetLevel(logger.FATAL)
	}

	promptRegistry, err := prompts.Open(cfg.PromptsDB)
	if err != nil {
		logger.Fatal("failed to open prompt registry", err)
	}
	defer promptRegistry.Close()

	resourceStore, err := resources.Open(cfg.ResourcesDB)
	if err != nil {
		logger.Fatal("failed to open resource store", err)
	}
	defer resourceStore.Close()

	toolRegistry := tools.NewRegistry()
	server.RegisterDefaultTools(toolRegistry, cfg.ApifoxToken)

	router := server.InitInstance(server.New(cfg.Name, cfg.Version, cfg.Instructions, toolRegistry, promptRegistry, resourceStore))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.ListenAddr != "" {
		handler := server.NewSSEHandler(router, cfg.BearerToken)
		if err := handler.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
			logger.Fatal("SSE transport exited", err)
		}
		return
	}

	framer := server.NewFramer(os.Stdin, os.Stdout)
	if err := server.Dispatch(ctx, router, framer); err != nil {
		logger.Fatal("stdio session exited", err)
	}
}
