package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"erpmcp/internal/logging"
	"erpmcp/pkg/models"
)

// KnowledgeStore serves the categorized operation records and flow-free
// metadata (enums, error catalog) of one ERP. All lookups are read-only
// against cached, immutable documents; a missing or malformed document
// degrades to an empty collection with a logged warning.
type KnowledgeStore interface {
	// ERP returns the key of the ERP this store serves.
	ERP() string

	// Categories returns the declared categories index.
	Categories() []models.Category

	// OperationsByCategory returns the operations of one category, or an
	// empty list when the category is unknown or its file is absent.
	OperationsByCategory(name string) []models.Operation

	// FindOperation locates an operation by method name, case-insensitively,
	// scanning all categories.
	FindOperation(method string) (models.Operation, bool)

	// AllOperations returns every operation across all categories.
	AllOperations() []models.Operation

	// Enums returns the ERP's enumerations.
	Enums() []models.Enum

	// ErrorCatalog returns the global error catalog.
	ErrorCatalog() models.ErrorCatalog

	// OperationErrors returns the validation and business-logic errors of
	// one operation, merged. Empty when the operation has none on record.
	OperationErrors(method string) []models.CatalogError

	// FileInventory lists every document the manifest declares, with
	// existence and size so a caller can audit the knowledge set.
	FileInventory() []models.FileInfo
}

type manifestKnowledgeStore struct {
	erp      string
	fsys     fs.FS
	manifest models.Manifest
	logger   *logging.Logger

	categories *Cache[[]models.Category]
	operations *Cache[[]models.Operation]
	enums      *Cache[[]models.Enum]
	errors     *Cache[models.ErrorCatalog]
}

// NewKnowledgeStore creates a KnowledgeStore over the given data
// filesystem and parsed manifest. ttl controls the sliding cache
// expiration; zero means DefaultCacheTTL.
func NewKnowledgeStore(fsys fs.FS, manifest models.Manifest, ttl time.Duration, logger *logging.Logger) KnowledgeStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &manifestKnowledgeStore{
		erp:        manifest.ERP,
		fsys:       fsys,
		manifest:   manifest,
		logger:     logger.With("erp", manifest.ERP),
		categories: NewCache[[]models.Category](ttl),
		operations: NewCache[[]models.Operation](ttl),
		enums:      NewCache[[]models.Enum](ttl),
		errors:     NewCache[models.ErrorCatalog](ttl),
	}
}

func (s *manifestKnowledgeStore) ERP() string {
	return s.erp
}

func (s *manifestKnowledgeStore) Categories() []models.Category {
	cats, _ := s.categories.Get("categories", func() ([]models.Category, error) {
		var out []models.Category
		s.loadDoc(s.manifest.Knowledge.Categories, &out)
		return out, nil
	})
	return cats
}

func (s *manifestKnowledgeStore) OperationsByCategory(name string) []models.Operation {
	file, ok := s.manifest.Knowledge.Operations[name]
	if !ok {
		// Category names in the manifest are canonical; tolerate case drift.
		for cat, f := range s.manifest.Knowledge.Operations {
			if strings.EqualFold(cat, name) {
				name, file, ok = cat, f, true
				break
			}
		}
	}
	if !ok {
		return nil
	}

	ops, _ := s.operations.Get(name, func() ([]models.Operation, error) {
		var out []models.Operation
		s.loadDoc(file, &out)
		return out, nil
	})
	return ops
}

func (s *manifestKnowledgeStore) FindOperation(method string) (models.Operation, bool) {
	for _, op := range s.AllOperations() {
		if strings.EqualFold(op.Method, method) {
			return op, true
		}
	}
	return models.Operation{}, false
}

func (s *manifestKnowledgeStore) AllOperations() []models.Operation {
	names := make([]string, 0, len(s.manifest.Knowledge.Operations))
	for cat := range s.manifest.Knowledge.Operations {
		names = append(names, cat)
	}
	sort.Strings(names)

	var all []models.Operation
	for _, cat := range names {
		all = append(all, s.OperationsByCategory(cat)...)
	}
	return all
}

func (s *manifestKnowledgeStore) Enums() []models.Enum {
	enums, _ := s.enums.Get("enums", func() ([]models.Enum, error) {
		var out []models.Enum
		s.loadDoc(s.manifest.Knowledge.Enums, &out)
		return out, nil
	})
	return enums
}

func (s *manifestKnowledgeStore) ErrorCatalog() models.ErrorCatalog {
	catalog, _ := s.errors.Get("errors", func() (models.ErrorCatalog, error) {
		var out models.ErrorCatalog
		s.loadDoc(s.manifest.Knowledge.Errors, &out)
		return out, nil
	})
	return catalog
}

func (s *manifestKnowledgeStore) OperationErrors(method string) []models.CatalogError {
	catalog := s.ErrorCatalog()
	for op, errs := range catalog.Operations {
		if strings.EqualFold(op, method) {
			merged := make([]models.CatalogError, 0, len(errs.Validation)+len(errs.BusinessLogic))
			merged = append(merged, errs.Validation...)
			merged = append(merged, errs.BusinessLogic...)
			return merged
		}
	}
	return nil
}

func (s *manifestKnowledgeStore) FileInventory() []models.FileInfo {
	var files []models.FileInfo

	add := func(kind, p string) {
		if p == "" {
			return
		}
		info := models.FileInfo{Path: p, Kind: kind}
		if st, err := fs.Stat(s.fsys, p); err == nil {
			info.SizeBytes = st.Size()
			info.OK = true
		}
		files = append(files, info)
	}

	add("categories", s.manifest.Knowledge.Categories)
	add("enums", s.manifest.Knowledge.Enums)
	add("errors", s.manifest.Knowledge.Errors)

	cats := make([]string, 0, len(s.manifest.Knowledge.Operations))
	for cat := range s.manifest.Knowledge.Operations {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		add("operations", s.manifest.Knowledge.Operations[cat])
	}

	extras := make([]string, 0, len(s.manifest.Knowledge.Extras))
	for name := range s.manifest.Knowledge.Extras {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		add("extra", s.manifest.Knowledge.Extras[name])
	}

	for _, flow := range s.manifest.Flows {
		add("flow", flowDocPath(flow))
	}

	return files
}

// loadDoc reads and unmarshals one JSON document into out. Missing or
// malformed documents leave out untouched and log a warning: the store
// favors partial availability over hard failure.
func (s *manifestKnowledgeStore) loadDoc(file string, out any) {
	if file == "" {
		return
	}
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		s.logger.Warn("knowledge document missing", "file", file, "err", err)
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("knowledge document malformed", "file", file, "err", err)
	}
}

// flowDocPath maps a canonical flow name to its document path.
func flowDocPath(name string) string {
	return path.Join("flows", fmt.Sprintf("%s.json", name))
}
