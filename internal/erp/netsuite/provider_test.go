package netsuite

import (
	"testing"

	"erpmcp/internal/core"
	"erpmcp/internal/erp"
	"erpmcp/internal/logging"
)

func TestRegister_KnowledgeOnly(t *testing.T) {
	registry := erp.NewRegistry()
	if err := Register(registry, core.DefaultServerConfig(), logging.Discard()); err != nil {
		t.Fatalf("registering netsuite: %v", err)
	}

	facade, err := registry.Resolve("ns")
	if err != nil {
		t.Fatalf("resolving alias: %v", err)
	}
	if facade.Info().Key != Key {
		t.Fatalf("expected %q, got %q", Key, facade.Info().Key)
	}

	caps := facade.Capabilities()
	if len(caps) != 1 || caps[0] != erp.CapKnowledge {
		t.Fatalf("expected knowledge-only capabilities, got %v", caps)
	}
	if _, ok := facade.Flows(); ok {
		t.Fatal("expected no flow store")
	}
	if _, ok := facade.Query(); ok {
		t.Fatal("expected no query service")
	}
	if _, ok := facade.Validator(); ok {
		t.Fatal("expected no validator")
	}
	if _, ok := facade.Diagnoser(); ok {
		t.Fatal("expected no diagnoser")
	}
	if _, ok := facade.Recommender(); ok {
		t.Fatal("expected no recommender")
	}
}

func TestEmbeddedKnowledge_VendorLookups(t *testing.T) {
	registry := erp.NewRegistry()
	if err := Register(registry, core.DefaultServerConfig(), logging.Discard()); err != nil {
		t.Fatalf("registering netsuite: %v", err)
	}
	facade, err := registry.Resolve(Key)
	if err != nil {
		t.Fatalf("resolving netsuite: %v", err)
	}

	knowledge := facade.Knowledge()
	if knowledge.ERP() != "netsuite" {
		t.Fatalf("expected netsuite, got %q", knowledge.ERP())
	}
	categories := knowledge.Categories()
	if len(categories) != 1 || categories[0].Name != "vendors" {
		t.Fatalf("expected a single vendors category, got %+v", categories)
	}
	if ops := knowledge.AllOperations(); len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}
	if _, ok := knowledge.FindOperation("getVendorDetails"); !ok {
		t.Fatal("expected getVendorDetails to be found")
	}
}
