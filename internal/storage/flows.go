package storage

import (
	"encoding/json"
	"io/fs"
	"strings"
	"time"

	"erpmcp/internal/logging"
	"erpmcp/pkg/models"
)

// FlowStore serves the named flow documents of one ERP. Flow names are
// looked up case-insensitively with spaces, hyphens, and underscores
// treated as equivalent separators.
type FlowStore interface {
	// Flow returns the flow for name after normalization, or false when
	// the name resolves to nothing.
	Flow(name string) (models.Flow, bool)

	// FlowNames returns the canonical names of every known flow, in
	// manifest order.
	FlowNames() []string

	// AllFlows returns every flow document, in manifest order.
	AllFlows() []models.Flow

	// FlowForOperation returns the name of the flow whose UsedByOperations
	// list contains the given method, or false when no flow claims it.
	FlowForOperation(method string) (string, bool)
}

type manifestFlowStore struct {
	fsys   fs.FS
	names  []string
	logger *logging.Logger
	flows  *Cache[models.Flow]
}

// NewFlowStore creates a FlowStore over the given data filesystem using
// the manifest's flow list. ttl controls the sliding cache expiration.
func NewFlowStore(fsys fs.FS, manifest models.Manifest, ttl time.Duration, logger *logging.Logger) FlowStore {
	if logger == nil {
		logger = logging.Discard()
	}
	names := make([]string, len(manifest.Flows))
	copy(names, manifest.Flows)
	return &manifestFlowStore{
		fsys:   fsys,
		names:  names,
		logger: logger.With("erp", manifest.ERP),
		flows:  NewCache[models.Flow](ttl),
	}
}

func (s *manifestFlowStore) Flow(name string) (models.Flow, bool) {
	canonical, ok := s.resolveName(name)
	if !ok {
		return models.Flow{}, false
	}

	flow, _ := s.flows.Get(canonical, func() (models.Flow, error) {
		out := models.Flow{Name: canonical}
		file := flowDocPath(canonical)
		data, err := fs.ReadFile(s.fsys, file)
		if err != nil {
			s.logger.Warn("flow document missing", "file", file, "err", err)
			return out, nil
		}
		if err := json.Unmarshal(data, &out); err != nil {
			s.logger.Warn("flow document malformed", "file", file, "err", err)
			out = models.Flow{Name: canonical}
		}
		return out, nil
	})
	return flow, true
}

func (s *manifestFlowStore) FlowNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

func (s *manifestFlowStore) AllFlows() []models.Flow {
	flows := make([]models.Flow, 0, len(s.names))
	for _, name := range s.names {
		if flow, ok := s.Flow(name); ok {
			flows = append(flows, flow)
		}
	}
	return flows
}

func (s *manifestFlowStore) FlowForOperation(method string) (string, bool) {
	for _, flow := range s.AllFlows() {
		for _, op := range flow.UsedByOperations {
			if strings.EqualFold(op, method) {
				return flow.Name, true
			}
		}
	}
	return "", false
}

// resolveName maps a caller-supplied flow name to its canonical form:
// first an exact case-insensitive match, then a retry with separators
// normalized to underscores.
func (s *manifestFlowStore) resolveName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	for _, canonical := range s.names {
		if strings.EqualFold(canonical, name) {
			return canonical, true
		}
	}

	normalized := NormalizeFlowName(name)
	for _, canonical := range s.names {
		if strings.EqualFold(canonical, normalized) {
			return canonical, true
		}
	}

	return "", false
}

// NormalizeFlowName lowercases a flow name and collapses spaces and
// hyphens to underscores.
func NormalizeFlowName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(name)))
}
