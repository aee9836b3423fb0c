package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/hnakamura/examdeck/internal/config"
	"github.com/hnakamura/examdeck/internal/library"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openLibrary loads the configuration and opens the library over its storage
// directory. The caller must Close the returned library.
func openLibrary(ctx context.Context) (*library.Library, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Storage.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	lib, err := library.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("library.Open() > %w", err)
	}
	if lib.Degraded() {
		color.Yellow("Warning: storage is unavailable; changes will not be saved.")
	}
	return lib, nil
}

// readImageFile reads an image file and encodes it as a data URI, the inline
// shape every import path expects.
func readImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
