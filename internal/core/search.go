package core

import (
	"fmt"
	"strings"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Scope values accepted by Query. Anything else behaves as ScopeAll.
const (
	ScopeOperations = "operations"
	ScopeFlows      = "flows"
	ScopeConstants  = "constants"
	ScopeAll        = "all"
)

// QueryService answers free-text searches over one ERP's operations and
// flows.
type QueryService interface {
	Query(queryText, scope string) *models.QueryResult
}

type queryService struct {
	knowledge  storage.KnowledgeStore
	flows      storage.FlowStore
	thresholds models.FuzzyThresholds
}

// NewQueryService creates a QueryService over the given stores.
func NewQueryService(knowledge storage.KnowledgeStore, flows storage.FlowStore, thresholds models.FuzzyThresholds) QueryService {
	if thresholds.Keyword <= 0 {
		thresholds = DefaultThresholds()
	}
	return &queryService{knowledge: knowledge, flows: flows, thresholds: thresholds}
}

// Query tokenizes queryText and returns every operation and flow whose
// text clears all tokens, each token matched exactly or fuzzily. An empty
// token set (including the literal "*") matches everything. Constants,
// validation rules, and code examples are aggregated across all flows
// regardless of token matches: they are global reference tables, and the
// consuming assistant benefits more from breadth than from precision.
func (q *queryService) Query(queryText, scope string) *models.QueryResult {
	scope = strings.ToLower(strings.TrimSpace(scope))
	switch scope {
	case ScopeOperations, ScopeFlows, ScopeConstants:
	default:
		scope = ScopeAll
	}

	tokens := Tokenize(queryText)
	erp := q.knowledge.ERP()

	result := &models.QueryResult{
		MatchedOperations: []models.OperationSummary{},
		RelevantFlows:     []models.FlowSummary{},
		NextActions:       browseActions(erp),
	}

	if scope == ScopeOperations || scope == ScopeAll {
		for _, op := range q.knowledge.AllOperations() {
			text := op.Method + " " + op.Summary + " " + op.Category
			if !q.matchesTokens(tokens, text) {
				continue
			}
			summary := models.OperationSummary{
				Method:   op.Method,
				Summary:  op.Summary,
				Category: op.Category,
			}
			if flow, ok := q.flows.FlowForOperation(op.Method); ok {
				summary.Flow = flow
			}
			result.MatchedOperations = append(result.MatchedOperations, summary)
		}
	}

	if scope == ScopeFlows || scope == ScopeAll {
		for _, flow := range q.flows.AllFlows() {
			text := flow.Name + " " + flow.Description
			if !q.matchesTokens(tokens, text) {
				continue
			}
			result.RelevantFlows = append(result.RelevantFlows, models.FlowSummary{
				Name:             flow.Name,
				Description:      flow.Description,
				UsedByOperations: flow.UsedByOperations,
			})
		}
	}

	if scope == ScopeConstants || scope == ScopeAll {
		result.Constants = make(map[string]models.FlowConstant)
		result.CodeExamples = make(map[string]string)
		for _, flow := range q.flows.AllFlows() {
			for name, c := range flow.Constants {
				result.Constants[name] = c
			}
			result.ValidationRules = append(result.ValidationRules, flow.ValidationRules...)
			for name, snippet := range flow.CodeSnippets {
				result.CodeExamples[name] = snippet
			}
		}
	}

	result.Summary = fmt.Sprintf("Found %d operations and %d flows matching %q (scope: %s).",
		len(result.MatchedOperations), len(result.RelevantFlows), queryText, scope)

	return result
}

// matchesTokens applies AND semantics across tokens and exact-or-fuzzy
// semantics per token against the candidate text.
func (q *queryService) matchesTokens(tokens []string, text string) bool {
	if len(tokens) == 0 {
		return true
	}

	lower := strings.ToLower(text)
	words := splitWords(lower)

	for _, token := range tokens {
		if strings.Contains(lower, token) {
			continue
		}
		if _, ok := FindBestMatch(token, words, q.thresholds.Keyword); !ok {
			return false
		}
	}
	return true
}

// Tokenize splits a query on whitespace, hyphens, and underscores,
// lowercases the parts, drops tokens shorter than two characters, and
// removes duplicates. The wildcard "*" falls out as an empty token set.
func Tokenize(query string) []string {
	parts := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_'
	})

	seen := make(map[string]bool)
	var tokens []string
	for _, p := range parts {
		if len([]rune(p)) < 2 || len(splitWords(p)) == 0 || seen[p] {
			continue
		}
		seen[p] = true
		tokens = append(tokens, p)
	}
	return tokens
}
