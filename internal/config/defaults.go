package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/layoutd/
//   - Linux:   ~/.local/share/layoutd/
//   - Windows: %APPDATA%\layoutd\
func PlatformDataDir() string {
	if env := os.Getenv("LAYOUTD_DATA_DIR"); env != "" {
		return env
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "layoutd")
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "layoutd")
		}
		return filepath.Join(homeDir(), ".local", "share", "layoutd")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "layoutd")
		}
		return filepath.Join(homeDir(), "AppData", "Roaming", "layoutd")
	default:
		return filepath.Join(homeDir(), ".layoutd")
	}
}

// PlatformConfigDir returns the platform-specific config directory.
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "layoutd")
		}
		return filepath.Join(homeDir(), ".config", "layoutd")
	default:
		// macOS and Windows keep config next to data.
		return PlatformDataDir()
	}
}

// PlatformLogDir returns the platform-specific log directory.
func PlatformLogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", "layoutd")
	case "linux":
		return filepath.Join(PlatformDataDir(), "logs")
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "layoutd", "logs")
		}
		return filepath.Join(homeDir(), "AppData", "Local", "layoutd", "logs")
	default:
		return filepath.Join(PlatformDataDir(), "logs")
	}
}

// PlatformRuntimeDir returns the directory for the control socket.
func PlatformRuntimeDir() string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
			return filepath.Join(xdg, "layoutd")
		}
		return fmt.Sprintf("/tmp/layoutd-%d", os.Getuid())
	case "windows":
		return "" // named pipes
	default:
		return fmt.Sprintf("/tmp/layoutd-%d", os.Getuid())
	}
}

// DefaultSocketPath returns the default control socket path.
func DefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\layoutd`
	}
	return filepath.Join(PlatformRuntimeDir(), "layoutd.sock")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}
