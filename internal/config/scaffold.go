package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TraceDir is the directory scaffolded for bus captures.
const TraceDir = "traces"

// ScaffoldProject prepares dir for running morsetap: it writes morsetap.toml,
// creates the traces/ capture directory, and makes sure captures stay out of
// version control. Files that already exist are left untouched. Returns the
// list of created or modified paths.
func ScaffoldProject(dir string) ([]string, error) {
	var created []string

	// morsetap.toml
	tomlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		if _, initErr := InitFile(dir); initErr != nil {
			return created, initErr
		}
		created = append(created, tomlPath)
	}

	// traces/ directory
	traceDir := filepath.Join(dir, TraceDir)
	if _, err := os.Stat(traceDir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(traceDir, 0755); mkErr != nil {
			return created, fmt.Errorf("scaffold: create %s: %w", traceDir, mkErr)
		}
		created = append(created, traceDir)
	}

	// .gitignore
	const gitignoreEntry = TraceDir + "/"
	gitignorePath := filepath.Join(dir, ".gitignore")
	existing, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(gitignorePath, []byte(gitignoreEntry+"\n"), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	} else if err != nil {
		return created, fmt.Errorf("scaffold: read %s: %w", gitignorePath, err)
	} else if !containsLine(string(existing), gitignoreEntry) {
		content := string(existing)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			content += "\n"
		}
		content += gitignoreEntry + "\n"
		if writeErr := os.WriteFile(gitignorePath, []byte(content), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	}

	return created, nil
}

func containsLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
