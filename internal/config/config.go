// Package config loads server and client startup options from a YAML file
// with flag overrides, the same two-layer pattern the teacher used for its
// football-prediction tuning config (pkg/util/podds/config.go) before that
// package was retired.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls how cmd/main.go exposes this MCP server.
type ServerConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Instructions string `yaml:"instructions"`
	PromptsDB    string `yaml:"prompts_db"`
	ResourcesDB  string `yaml:"resources_db"`
	ApifoxToken  string `yaml:"apifox_token"`
	ListenAddr   string `yaml:"listen_addr"` // non-empty selects the SSE+HTTP transport instead of stdio
	BearerToken  string `yaml:"bearer_token"`
	LogOutput    string `yaml:"log_output"` // 'c', 'f', or 'b' - passed straight to logger.SetLogOutput
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:        "mcpgo",
		Version:     "0.1.0",
		PromptsDB:   "prompts.db",
		ResourcesDB: "resources.db",
		LogOutput:   "f",
	}
}

// LoadServerConfig reads the file named by -config (if it exists) as YAML
// over the defaults, then lets command-line flags win over both. A missing file is not an error -
// it just means every option falls back to its default or flag value.
func LoadServerConfig(args []string) (ServerConfig, error) {
	cfg := defaultServerConfig()

	fs := flag.NewFlagSet("mcpserver", flag.ContinueOnError)
	configPath := fs.String("config", "mcpserver.yaml", "path to YAML config file")
	listenAddr := fs.String("listen", "", "listen address for the SSE+HTTP transport (stdio is used when empty)")
	bearerToken := fs.String("bearer-token", "", "bearer token required of SSE clients")
	apifoxToken := fs.String("apifox-token", "", "Apifox access token; registers apifox_export_openapi when set")
	logOutput := fs.String("log-output", "", "log destination: c (console), f (file), or b (both)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if data, err := os.ReadFile(*configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", *configPath, err)
		}
	}

	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *bearerToken != "" {
		cfg.BearerToken = *bearerToken
	}
	if *apifoxToken != "" {
		cfg.ApifoxToken = *apifoxToken
	}
	if *logOutput != "" {
		cfg.LogOutput = *logOutput
	}
	return cfg, nil
}

// ClientConfig controls how cmd/mcpclient/main.go connects out to a server.
type ClientConfig struct {
	Command     string        `yaml:"command"`
	Args        []string      `yaml:"args"`
	URL         string        `yaml:"url"` // non-empty selects the SSE transport instead of stdio
	BearerToken string        `yaml:"bearer_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{Timeout: 30 * time.Second}
}

// LoadClientConfig mirrors LoadServerConfig's YAML-then-flags layering for
// the client-side entry point. The returned slice is whatever positional
// arguments followed the flags - e.g. a tool name and a JSON arguments blob.
func LoadClientConfig(args []string) (ClientConfig, []string, error) {
	cfg := defaultClientConfig()

	fs := flag.NewFlagSet("mcpclient", flag.ContinueOnError)
	configPath := fs.String("config", "mcpclient.yaml", "path to YAML config file")
	url := fs.String("url", "", "SSE server URL (spawns a stdio subprocess instead when empty)")
	command := fs.String("command", "", "command to spawn for the stdio transport")
	bearerToken := fs.String("bearer-token", "", "bearer token sent with SSE requests")
	timeout := fs.Duration("timeout", 0, "per-call timeout, e.g. 30s")
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	if data, err := os.ReadFile(*configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("failed to parse %s: %w", *configPath, err)
		}
	}

	if *url != "" {
		cfg.URL = *url
	}
	if *command != "" {
		cfg.Command = *command
	}
	if *bearerToken != "" {
		cfg.BearerToken = *bearerToken
	}
	if *timeout != 0 {
		cfg.Timeout = *timeout
	}
	return cfg, fs.Args(), nil
}
