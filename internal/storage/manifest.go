package storage

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"erpmcp/pkg/models"
)

// ManifestPath is where every ERP data filesystem keeps its index.
const ManifestPath = "manifest.yaml"

// LoadManifest parses the manifest from the given data filesystem. A
// missing or unparseable manifest is a configuration defect and is the
// one load error that propagates instead of degrading.
func LoadManifest(fsys fs.FS) (models.Manifest, error) {
	var m models.Manifest

	data, err := fs.ReadFile(fsys, ManifestPath)
	if err != nil {
		return m, fmt.Errorf("reading knowledge manifest: %w", err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing knowledge manifest: %w", err)
	}

	if m.ERP == "" {
		return m, fmt.Errorf("knowledge manifest missing erp key")
	}

	return m, nil
}
