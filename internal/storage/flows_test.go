package storage

import (
	"testing"
	"testing/fstest"
	"time"

	"pgregory.net/rapid"

	"erpmcp/internal/logging"
)

func testFlowFS() fstest.MapFS {
	fsys := testKnowledgeFS()
	fsys["flows/standard_import_flow.json"] = &fstest.MapFile{Data: []byte(`{
		"name": "standard_import_flow",
		"description": "Paginated import of ERP records.",
		"constants": {
			"MAX_PAGE_SIZE": {"value": "2000", "file": "src/Import/PaginatedReader.cs", "line": 42}
		},
		"usedByOperations": ["importVendors", "exportBill"]
	}`)}
	return fsys
}

func newTestFlowStore(t *testing.T, fsys fstest.MapFS) FlowStore {
	t.Helper()
	manifest, err := LoadManifest(fsys)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}
	return NewFlowStore(fsys, manifest, time.Minute, logging.Discard())
}

func TestFlowStore_Flow(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	flow, ok := store.Flow("standard_import_flow")
	if !ok {
		t.Fatal("expected flow to resolve")
	}
	if flow.Description != "Paginated import of ERP records." {
		t.Fatalf("unexpected description: %q", flow.Description)
	}
	if c, ok := flow.Constants["MAX_PAGE_SIZE"]; !ok || c.Value != "2000" || c.Line != 42 {
		t.Fatalf("unexpected constant: %+v", flow.Constants)
	}
}

func TestFlowStore_Flow_NameNormalization(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	variants := []string{
		"Standard Import Flow",
		"standard-import-flow",
		"STANDARD_IMPORT_FLOW",
		"  standard import flow  ",
	}
	for _, name := range variants {
		flow, ok := store.Flow(name)
		if !ok {
			t.Fatalf("expected %q to resolve", name)
		}
		if flow.Name != "standard_import_flow" {
			t.Fatalf("expected canonical name for %q, got %q", name, flow.Name)
		}
	}

	if _, ok := store.Flow("no_such_flow"); ok {
		t.Fatal("expected miss for unknown flow")
	}
	if _, ok := store.Flow(""); ok {
		t.Fatal("expected miss for empty name")
	}
}

// Any mix of case and separator style must resolve to the same canonical
// flow.
func TestFlowStore_Flow_SeparatorPermutations(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	rapid.Check(t, func(t *rapid.T) {
		words := []string{"standard", "import", "flow"}
		var name string
		for i, w := range words {
			if rapid.Bool().Draw(t, "upper") {
				w = toUpperASCII(w)
			}
			if i > 0 {
				name += rapid.SampledFrom([]string{" ", "-", "_"}).Draw(t, "sep")
			}
			name += w
		}

		flow, ok := store.Flow(name)
		if !ok {
			t.Fatalf("expected %q to resolve", name)
		}
		if flow.Name != "standard_import_flow" {
			t.Fatalf("expected canonical name for %q, got %q", name, flow.Name)
		}
	})
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func TestFlowStore_MissingDocumentDegrades(t *testing.T) {
	// vendor_export_flow is declared in the manifest but has no document
	// in testFlowFS only when deleted.
	fsys := testFlowFS()
	delete(fsys, "flows/vendor_export_flow.json")
	store := newTestFlowStore(t, fsys)

	flow, ok := store.Flow("vendor_export_flow")
	if !ok {
		t.Fatal("expected declared flow to resolve even without its document")
	}
	if flow.Name != "vendor_export_flow" || flow.Description != "" {
		t.Fatalf("expected name-only flow, got %+v", flow)
	}
}

func TestFlowStore_MalformedDocumentDegrades(t *testing.T) {
	fsys := testFlowFS()
	fsys["flows/vendor_export_flow.json"] = &fstest.MapFile{Data: []byte(`[broken`)}
	store := newTestFlowStore(t, fsys)

	flow, ok := store.Flow("vendor_export_flow")
	if !ok {
		t.Fatal("expected declared flow to resolve despite a malformed document")
	}
	if flow.Description != "" || len(flow.UsedByOperations) != 0 {
		t.Fatalf("expected name-only flow, got %+v", flow)
	}
}

func TestFlowStore_FlowNames_ManifestOrder(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	names := store.FlowNames()
	want := []string{"vendor_export_flow", "standard_import_flow"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, names[i])
		}
	}

	// The returned slice is a copy.
	names[0] = "mutated"
	if store.FlowNames()[0] != "vendor_export_flow" {
		t.Fatal("expected FlowNames to return a defensive copy")
	}
}

func TestFlowStore_AllFlows(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	flows := store.AllFlows()
	if len(flows) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(flows))
	}
	if flows[0].Name != "vendor_export_flow" || flows[1].Name != "standard_import_flow" {
		t.Fatalf("expected manifest order, got %q then %q", flows[0].Name, flows[1].Name)
	}
}

func TestFlowStore_FlowForOperation(t *testing.T) {
	store := newTestFlowStore(t, testFlowFS())

	flow, ok := store.FlowForOperation("IMPORTVENDORS")
	if !ok {
		t.Fatal("expected case-insensitive operation lookup")
	}
	if flow != "standard_import_flow" {
		t.Fatalf("expected standard_import_flow, got %q", flow)
	}

	if _, ok := store.FlowForOperation("unknownOp"); ok {
		t.Fatal("expected miss for unclaimed operation")
	}
}

func TestNormalizeFlowName(t *testing.T) {
	cases := map[string]string{
		"Vendor Export Flow": "vendor_export_flow",
		"vendor-export-flow": "vendor_export_flow",
		"  mixed-Sep Flow_x": "mixed_sep_flow_x",
	}
	for in, want := range cases {
		if got := NormalizeFlowName(in); got != want {
			t.Fatalf("NormalizeFlowName(%q) = %q, want %q", in, got, want)
		}
	}
}
