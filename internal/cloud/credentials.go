package cloud

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chv/internal/paths"
)

const credentialsFile = "credentials.json"

// Credentials is a saved API key pair, stored project-locally so different
// projects can talk to different organizations.
type Credentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// LoadCredentials reads saved credentials from root's project directory.
// Missing or unreadable files yield ok=false.
func LoadCredentials(root string) (Credentials, bool) {
	projectDir, err := paths.ProjectDir(root)
	if err != nil {
		return Credentials{}, false
	}
	data, err := os.ReadFile(filepath.Join(projectDir, credentialsFile))
	if err != nil {
		return Credentials{}, false
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false
	}
	if creds.APIKey == "" || creds.APISecret == "" {
		return Credentials{}, false
	}
	return creds, true
}

// SaveCredentials writes the key pair into the project directory with owner
// only permissions. The project dir and its .gitignore are created on first
// use so the secret never lands in version control.
func SaveCredentials(root string, creds Credentials) error {
	projectDir, err := paths.ProjectDir(root)
	if err != nil {
		return err
	}
	if !paths.DirExists(projectDir) {
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return fmt.Errorf("create project dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(projectDir, ".gitignore"), []byte("*\n"), 0o644); err != nil {
			return fmt.Errorf("write project gitignore: %w", err)
		}
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	path := filepath.Join(projectDir, credentialsFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	// WriteFile does not tighten an existing file's mode.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict credentials: %w", err)
	}
	return nil
}
