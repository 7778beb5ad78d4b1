package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvDatabasePath overrides database detection when set.
const EnvDatabasePath = "AGENT_TRANSCRIPT_DB"

// DetectDatabasePath locates the agent backend's SQLite database. An
// explicit path wins, then the environment override, then the platform
// default under the user's data directory.
func DetectDatabasePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvDatabasePath); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library/Application Support/agent-demo")
	case "linux":
		base = filepath.Join(home, ".local/share/agent-demo")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		base = filepath.Join(appData, "agent-demo")
	default:
		return "", fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return filepath.Join(base, "chat.db"), nil
}

// DatabaseExists checks whether the database file is present
func DatabaseExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
