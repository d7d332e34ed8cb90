// Package netsuite is a deliberately minimal ERP provider: knowledge
// only, no flows and no derived services. It exists so the tool surface
// exercises its capability-degradation paths against a real
// registration.
package netsuite

import (
	"embed"
	"fmt"
	"io/fs"
	"time"

	"erpmcp/internal/erp"
	"erpmcp/internal/logging"
	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Key under which this provider registers.
const Key = "netsuite"

//go:embed data
var dataFS embed.FS

// Register adds the NetSuite knowledge-only bundle to the registry.
func Register(reg *erp.Registry, cfg models.ServerConfig, logger *logging.Logger) error {
	fsys, err := fs.Sub(dataFS, "data")
	if err != nil {
		return fmt.Errorf("opening netsuite data: %w", err)
	}

	manifest, err := storage.LoadManifest(fsys)
	if err != nil {
		return fmt.Errorf("loading netsuite manifest: %w", err)
	}

	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	bundle := erp.ServiceBundle{
		Knowledge: storage.NewKnowledgeStore(fsys, manifest, ttl, logger),
	}

	info := erp.Info{
		Key:         Key,
		Aliases:     []string{"ns"},
		Version:     manifest.Version,
		Description: manifest.Description,
	}
	return reg.Register(info, bundle)
}
