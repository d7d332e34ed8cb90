package core

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func newTestQueryService() QueryService {
	return NewQueryService(vendorKnowledge(), vendorFlows(), DefaultThresholds())
}

func TestQuery_Wildcard(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("*", ScopeAll)
	if len(result.MatchedOperations) != 4 {
		t.Fatalf("expected all 4 operations for wildcard, got %d", len(result.MatchedOperations))
	}
	if len(result.RelevantFlows) != 3 {
		t.Fatalf("expected all 3 flows for wildcard, got %d", len(result.RelevantFlows))
	}
}

func TestQuery_EmptyMatchesEverything(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("", ScopeAll)
	if len(result.MatchedOperations) != 4 || len(result.RelevantFlows) != 3 {
		t.Fatalf("expected full result set for empty query, got %d ops and %d flows",
			len(result.MatchedOperations), len(result.RelevantFlows))
	}
}

func TestQuery_TokensAreANDed(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("export vendor", ScopeOperations)

	for _, op := range result.MatchedOperations {
		if op.Method == "exportBill" {
			t.Fatal("exportBill matches only one token and must be excluded")
		}
	}

	found := false
	for _, op := range result.MatchedOperations {
		if op.Method == "exportVendor" {
			found = true
			if op.Flow != "vendor_export_flow" {
				t.Fatalf("expected owning flow annotation, got %q", op.Flow)
			}
		}
	}
	if !found {
		t.Fatal("expected exportVendor to match both tokens")
	}
}

func TestQuery_FuzzyToken(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("vendr", ScopeOperations)
	if len(result.MatchedOperations) == 0 {
		t.Fatal("expected a one-typo token to still match vendor operations")
	}
}

func TestQuery_ScopeOperations(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("*", ScopeOperations)
	if len(result.RelevantFlows) != 0 {
		t.Fatalf("expected no flows in operations scope, got %d", len(result.RelevantFlows))
	}
	if len(result.Constants) != 0 {
		t.Fatalf("expected no constants in operations scope, got %d", len(result.Constants))
	}
}

func TestQuery_ScopeConstants_AggregatesAllFlows(t *testing.T) {
	q := newTestQueryService()

	// Constants are a global reference table: even a query that matches
	// nothing still returns every flow's constants.
	result := q.Query("zzz-no-match", ScopeConstants)
	if len(result.MatchedOperations) != 0 || len(result.RelevantFlows) != 0 {
		t.Fatal("constants scope must not return operations or flows")
	}
	if _, ok := result.Constants["MAX_PAGE_SIZE"]; !ok {
		t.Fatalf("expected MAX_PAGE_SIZE in constants, got %v", result.Constants)
	}
	if _, ok := result.Constants["VENDOR_ID_MAX_LENGTH"]; !ok {
		t.Fatalf("expected VENDOR_ID_MAX_LENGTH in constants, got %v", result.Constants)
	}
	if len(result.ValidationRules) == 0 {
		t.Fatal("expected aggregated validation rules")
	}
	if _, ok := result.CodeExamples["pagination_loop"]; !ok {
		t.Fatal("expected aggregated code examples")
	}
}

func TestQuery_UnknownScopeBehavesAsAll(t *testing.T) {
	q := newTestQueryService()

	result := q.Query("*", "bogus")
	if len(result.MatchedOperations) == 0 || len(result.RelevantFlows) == 0 || len(result.Constants) == 0 {
		t.Fatal("expected unknown scope to behave as all")
	}
}

func TestQuery_NextActionsReferenceKnownTools(t *testing.T) {
	q := newTestQueryService()

	known := make(map[string]bool)
	for _, name := range ToolNames() {
		known[name] = true
	}

	result := q.Query("vendor", ScopeAll)
	if len(result.NextActions) == 0 {
		t.Fatal("expected next actions")
	}
	for _, action := range result.NextActions {
		if !known[action.Tool] {
			t.Fatalf("next action references unknown tool %q", action.Tool)
		}
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Export Vendor", []string{"export", "vendor"}},
		{"vendor-export_flow", []string{"vendor", "export", "flow"}},
		{"*", nil},
		{"**", nil},
		{"a b", nil},
		{"vendor vendor", []string{"vendor"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestQuery_Idempotent(t *testing.T) {
	q := newTestQueryService()

	first := q.Query("vendor export", ScopeAll)
	second := q.Query("vendor export", ScopeAll)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results for identical queries")
	}
}

func TestTokenize_NeverReturnsShortOrSymbolTokens(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		query := rapid.StringMatching(`[a-z*_ -]{0,40}`).Draw(t, "query")

		for _, token := range Tokenize(query) {
			if len([]rune(token)) < 2 {
				t.Fatalf("token %q shorter than 2 runes from %q", token, query)
			}
			if len(splitWords(token)) == 0 {
				t.Fatalf("token %q has no letters or digits from %q", token, query)
			}
		}
	})
}
