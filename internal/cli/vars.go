package cli

import (
	"erpmcp/internal/erp"
	"erpmcp/internal/logging"
	"erpmcp/internal/observability"
	"erpmcp/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Registry *erp.Registry
	Audit    observability.AuditLog
	Config   models.ServerConfig
	Logger   *logging.Logger
)
