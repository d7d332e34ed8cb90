package erp

import (
	"strings"
	"testing"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// stubKnowledge is the minimal KnowledgeStore a registration needs.
type stubKnowledge struct {
	erp string
}

var _ storage.KnowledgeStore = (*stubKnowledge)(nil)

func (s *stubKnowledge) ERP() string                                    { return s.erp }
func (s *stubKnowledge) Categories() []models.Category                  { return nil }
func (s *stubKnowledge) OperationsByCategory(string) []models.Operation { return nil }
func (s *stubKnowledge) FindOperation(string) (models.Operation, bool) {
	return models.Operation{}, false
}
func (s *stubKnowledge) AllOperations() []models.Operation            { return nil }
func (s *stubKnowledge) Enums() []models.Enum                         { return nil }
func (s *stubKnowledge) ErrorCatalog() models.ErrorCatalog            { return models.ErrorCatalog{} }
func (s *stubKnowledge) OperationErrors(string) []models.CatalogError { return nil }
func (s *stubKnowledge) FileInventory() []models.FileInfo             { return nil }

type stubFlows struct{}

var _ storage.FlowStore = (*stubFlows)(nil)

func (stubFlows) Flow(string) (models.Flow, bool)        { return models.Flow{}, false }
func (stubFlows) FlowNames() []string                    { return nil }
func (stubFlows) AllFlows() []models.Flow                { return nil }
func (stubFlows) FlowForOperation(string) (string, bool) { return "", false }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	err := r.Register(
		Info{Key: "acumatica", Aliases: []string{"acu", "acumatica-erp"}, Version: "2024r1"},
		ServiceBundle{Knowledge: &stubKnowledge{erp: "acumatica"}, Flows: stubFlows{}},
	)
	if err != nil {
		t.Fatalf("registering acumatica: %v", err)
	}
	err = r.Register(
		Info{Key: "netsuite", Version: "2024.2"},
		ServiceBundle{Knowledge: &stubKnowledge{erp: "netsuite"}},
	)
	if err != nil {
		t.Fatalf("registering netsuite: %v", err)
	}
	return r
}

func TestRegistryResolve_ByKey(t *testing.T) {
	r := newTestRegistry(t)

	facade, err := r.Resolve("acumatica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facade.Info().Key != "acumatica" {
		t.Fatalf("expected acumatica, got %q", facade.Info().Key)
	}
}

func TestRegistryResolve_ByAlias(t *testing.T) {
	r := newTestRegistry(t)

	for _, lookup := range []string{"acu", "ACU", "  Acumatica-ERP "} {
		facade, err := r.Resolve(lookup)
		if err != nil {
			t.Fatalf("resolving %q: %v", lookup, err)
		}
		if facade.Info().Key != "acumatica" {
			t.Fatalf("resolving %q: expected acumatica, got %q", lookup, facade.Info().Key)
		}
	}
}

func TestRegistryResolve_UnknownListsRegisteredKeys(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve("sap")
	if err == nil {
		t.Fatal("expected error for unregistered key")
	}
	if !strings.Contains(err.Error(), "acumatica") || !strings.Contains(err.Error(), "netsuite") {
		t.Fatalf("expected error to name registered keys, got %q", err.Error())
	}
}

func TestRegistryRegister_RejectsDuplicateKey(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(Info{Key: "Acumatica"}, ServiceBundle{Knowledge: &stubKnowledge{}})
	if err == nil {
		t.Fatal("expected error for duplicate key")
	}
}

func TestRegistryRegister_RejectsKeyCollidingWithAlias(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(Info{Key: "acu"}, ServiceBundle{Knowledge: &stubKnowledge{}})
	if err == nil {
		t.Fatal("expected error for key colliding with existing alias")
	}
}

func TestRegistryRegister_RejectsTakenAlias(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(
		Info{Key: "dynamics", Aliases: []string{"acu"}},
		ServiceBundle{Knowledge: &stubKnowledge{}},
	)
	if err == nil {
		t.Fatal("expected error for alias already taken")
	}
}

func TestRegistryRegister_RequiresKnowledge(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Info{Key: "dynamics"}, ServiceBundle{})
	if err == nil {
		t.Fatal("expected error for bundle without knowledge store")
	}
}

func TestRegistryRegister_RequiresKey(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Info{Key: "  "}, ServiceBundle{Knowledge: &stubKnowledge{}})
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestRegistryRegister_DropsSelfAlias(t *testing.T) {
	r := NewRegistry()

	err := r.Register(
		Info{Key: "acumatica", Aliases: []string{"acumatica", "acu"}},
		ServiceBundle{Knowledge: &stubKnowledge{}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	facade, err := r.Resolve("acumatica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aliases := facade.Info().Aliases
	if len(aliases) != 1 || aliases[0] != "acu" {
		t.Fatalf("expected aliases [acu], got %v", aliases)
	}
}

func TestRegistryKeys_Sorted(t *testing.T) {
	r := newTestRegistry(t)

	keys := r.Keys()
	if len(keys) != 2 || keys[0] != "acumatica" || keys[1] != "netsuite" {
		t.Fatalf("expected sorted keys [acumatica netsuite], got %v", keys)
	}
}

func TestRegistryInfos_SortedByKey(t *testing.T) {
	r := newTestRegistry(t)

	infos := r.Infos()
	if len(infos) != 2 {
		t.Fatalf("expected 2 infos, got %d", len(infos))
	}
	if infos[0].Key != "acumatica" || infos[1].Key != "netsuite" {
		t.Fatalf("expected infos sorted by key, got %v", infos)
	}
	if infos[0].Version != "2024r1" {
		t.Fatalf("expected version to survive registration, got %q", infos[0].Version)
	}
}

func TestFacadeCapabilities(t *testing.T) {
	r := newTestRegistry(t)

	withFlows, err := r.Resolve("acumatica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	caps := withFlows.Capabilities()
	if len(caps) != 2 || caps[0] != CapKnowledge || caps[1] != CapFlows {
		t.Fatalf("expected [knowledge flows], got %v", caps)
	}

	knowledgeOnly, err := r.Resolve("netsuite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	caps = knowledgeOnly.Capabilities()
	if len(caps) != 1 || caps[0] != CapKnowledge {
		t.Fatalf("expected [knowledge], got %v", caps)
	}
	if _, ok := knowledgeOnly.Flows(); ok {
		t.Fatal("expected no flow store for netsuite")
	}
	if _, ok := knowledgeOnly.Query(); ok {
		t.Fatal("expected no query service for netsuite")
	}
}
