package writer

import (
	"encoding/json"
	"fmt"
	"os"

	"orbitflow/models"
)

// WriteManifest persists the run manifest as indented JSON. The manifest is
// the packaging step's source of truth for coverage, so a write failure is
// fatal to the run.
func WriteManifest(path string, manifest *models.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
