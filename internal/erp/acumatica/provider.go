// Package acumatica is the fully populated ERP provider: it embeds the
// Acumatica connector's knowledge set and registers the complete service
// bundle (knowledge, flows, query, validation, diagnostics,
// recommendations).
package acumatica

import (
	"embed"
	"fmt"
	"io/fs"
	"time"

	"erpmcp/internal/core"
	"erpmcp/internal/erp"
	"erpmcp/internal/logging"
	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Key and aliases under which this provider registers.
const (
	Key = "acumatica"
)

var aliases = []string{"acu"}

//go:embed data
var dataFS embed.FS

// DataFS returns the embedded knowledge filesystem rooted at the
// manifest.
func DataFS() (fs.FS, error) {
	return fs.Sub(dataFS, "data")
}

// Register builds the Acumatica service bundle from the embedded
// knowledge set and adds it to the registry.
func Register(reg *erp.Registry, cfg models.ServerConfig, logger *logging.Logger) error {
	fsys, err := DataFS()
	if err != nil {
		return fmt.Errorf("opening acumatica data: %w", err)
	}

	manifest, err := storage.LoadManifest(fsys)
	if err != nil {
		return fmt.Errorf("loading acumatica manifest: %w", err)
	}

	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	knowledge := storage.NewKnowledgeStore(fsys, manifest, ttl, logger)
	flows := storage.NewFlowStore(fsys, manifest, ttl, logger)
	classifier := core.NewFlowClassifier(core.DefaultFlowRules(), cfg.Thresholds.OperationName)

	bundle := erp.ServiceBundle{
		Knowledge:   knowledge,
		Flows:       flows,
		Query:       core.NewQueryService(knowledge, flows, cfg.Thresholds),
		Validator:   core.NewValidator(knowledge, flows),
		Diagnoser:   core.NewDiagnoser(knowledge, cfg.Thresholds),
		Recommender: core.NewRecommender(knowledge, flows, classifier, cfg.Recommend, cfg.Thresholds),
	}

	info := erp.Info{
		Key:         Key,
		Aliases:     aliases,
		Version:     manifest.Version,
		Description: manifest.Description,
	}
	return reg.Register(info, bundle)
}
