package main

import (
	"fmt"
	"os"

	"webhooksandbox/internal/cli"
	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/platform/config"
	"webhooksandbox/internal/platform/credentials"
)

func main() {
	root := cli.NewRootCommand(func(configPath string) (*notifications.TestingGateway, error) {
		cfg, err := config.Load(configPath, ".env")
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		keys, err := credentials.Resolve(cfg.Gateway)
		if err != nil {
			return nil, err
		}
		return notifications.NewTestingGateway(keys), nil
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
