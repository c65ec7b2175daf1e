// Package platform resolves per-OS directories for model snapshots and
// configuration. The runtime this tool fronts is Apple-silicon first, but the
// resolution and caching layer works anywhere, so linux gets XDG rules.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultModelDirFor computes the snapshot cache directory for an OS.
func DefaultModelDirFor(goos, homeDir, xdgCacheHome string) (string, error) {
	cacheDir, err := defaultCacheDirFor(goos, homeDir, xdgCacheHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "models"), nil
}

// DefaultConfigPathFor computes the config file location for an OS.
func DefaultConfigPathFor(goos, homeDir, xdgConfigHome string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, "lightwhisper", "config.yaml"), nil
		}
		return filepath.Join(homeDir, ".config", "lightwhisper", "config.yaml"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "lightwhisper", "config.yaml"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}

// ResolveModelDir returns the snapshot cache directory, honoring an override.
func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultModelDirFor(runtime.GOOS, homeDir, os.Getenv("XDG_CACHE_HOME"))
}

// ResolveConfigPath returns the config file path, honoring an override.
func ResolveConfigPath(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultConfigPathFor(runtime.GOOS, homeDir, os.Getenv("XDG_CONFIG_HOME"))
}

func defaultCacheDirFor(goos, homeDir, xdgCacheHome string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgCacheHome != "" {
			return filepath.Join(xdgCacheHome, "lightwhisper"), nil
		}
		return filepath.Join(homeDir, ".cache", "lightwhisper"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "lightwhisper"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
