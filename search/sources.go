package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadSources reads a workspace file holding the JSON encoded Sources.
func ReadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, fmt.Errorf("failed to read workspace: %w", err)
	}

	var sources Sources
	if err := json.Unmarshal(data, &sources); err != nil {
		return Sources{}, fmt.Errorf("failed to parse workspace %s: %w", path, err)
	}

	return sources, nil
}
