// Package internal provides the App struct that wires all components of
// the erpmcp server together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"erpmcp/internal/cli"
	"erpmcp/internal/core"
	"erpmcp/internal/erp"
	"erpmcp/internal/erp/acumatica"
	"erpmcp/internal/erp/netsuite"
	"erpmcp/internal/logging"
	"erpmcp/internal/observability"
	"erpmcp/pkg/models"
)

// App holds all service dependencies for the erpmcp server.
type App struct {
	BasePath string

	Config   models.ServerConfig
	Logger   *logging.Logger
	Registry *erp.Registry
	Audit    observability.AuditLog
}

// NewApp creates and wires all components of the erpmcp server.
// basePath is the directory where configuration and the audit log live
// (typically the current directory or ERPMCP_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	cfg, err := core.LoadServerConfig(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	app.Logger = logging.New(cfg.LogLevel)

	// ERP providers register their embedded knowledge sets. A broken
	// manifest is a build defect and fails startup.
	app.Registry = erp.NewRegistry()
	if err := acumatica.Register(app.Registry, cfg, app.Logger); err != nil {
		return nil, fmt.Errorf("registering acumatica: %w", err)
	}
	if err := netsuite.Register(app.Registry, cfg, app.Logger); err != nil {
		return nil, fmt.Errorf("registering netsuite: %w", err)
	}

	if cfg.Audit.Enabled {
		auditPath := cfg.Audit.Path
		if !filepath.IsAbs(auditPath) {
			auditPath = filepath.Join(basePath, auditPath)
		}
		app.Audit, err = observability.NewJSONLAuditLog(auditPath)
		if err != nil {
			// Non-fatal: serve without auditing if the log can't be created.
			app.Logger.Warn("disabling audit log", "path", auditPath, "err", err)
			app.Audit = nil
		}
	}

	// --- Wire CLI package-level variables ---
	cli.Registry = app.Registry
	cli.Audit = app.Audit
	cli.Config = app.Config
	cli.Logger = app.Logger

	return app, nil
}

// Close releases resources held by the App, such as the audit log file
// handle. Safe to call when auditing is disabled.
func (a *App) Close() error {
	if a.Audit != nil {
		return a.Audit.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for configuration and the
// audit log. It checks the ERPMCP_HOME env var, then walks up from the
// current directory looking for a config file.
func ResolveBasePath() string {
	if home := os.Getenv("ERPMCP_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
