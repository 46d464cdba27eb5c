package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const defaultAddr = "127.0.0.1:8091"

type Config struct {
	ConfigPath string
	Addr       string
	MCP        bool
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	configPath := os.Getenv("QUOTAWATCH_CONFIG_PATH")
	addr := envOrDefault("QUOTAWATCH_ADDR", defaultAddr)

	flagSet := flag.NewFlagSet("quotawatch-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagConfig := flagSet.String("config", configPath, "path to config file (YAML/TOML/JSON)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagMCP := flagSet.Bool("mcp", false, "serve MCP on stdio alongside HTTP")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	config := Config{
		ConfigPath: resolvePath(*flagConfig, cwd),
		Addr:       strings.TrimSpace(*flagAddr),
		MCP:        *flagMCP,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func resolvePath(path, cwd string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}
