package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/acklang/ack/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# ack project configuration.
# Every key can be overridden with an ACK_* environment variable
# (ACK_SRC_DIR, ACK_SERVE_PORT, ...) or the matching command-line flag.
`

const starterComponent = `<script>
let count = 0;
let doubled = count * 2;

function increment() {
  count += 1;
}
</script>

<template>
  <button @click="increment">Clicked {count} times</button>
  <p>Doubled: {doubled}</p>
</template>

<style>
  button { font-size: 1rem; }
</style>
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ack project",
		Long: `Initialize a new ack project.

This creates:
  - ack.yaml with the default configuration
  - src/App.ack, a starter component`,
		Example: `  # Initialize in the current directory
  ack init

  # Initialize in a new directory
  ack init my-app

  # Overwrite an existing ack.yaml
  ack init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			created, err := runInit(dir, force)
			if err != nil {
				return err
			}
			for _, path := range created {
				cmdCtx.Renderer.Success("created " + path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

// runInit writes the project files into dir and returns the created paths.
func runInit(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return nil, fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	data, err := DefaultConfigYAML()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	created := []string{configPath}

	componentPath := filepath.Join(dir, config.DefaultSrcDir, "App.ack")
	if _, err := os.Stat(componentPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(componentPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create source directory: %w", err)
		}
		if err := os.WriteFile(componentPath, []byte(starterComponent), 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", componentPath, err)
		}
		created = append(created, componentPath)
	}
	return created, nil
}

// DefaultConfigYAML renders the default configuration as ack.yaml content.
func DefaultConfigYAML() ([]byte, error) {
	cfg := config.Default()
	cfg.Output = ""

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
