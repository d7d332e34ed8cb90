package core

import (
	"fmt"
	"sort"
	"strings"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Default confidence cut points for operation recommendations. These are
// tunable heuristics, not a contract; config can override them.
const (
	DefaultHighCutoff      = 0.75
	DefaultMediumCutoff    = 0.40
	DefaultMaxAlternatives = 2
)

// DefaultRecommendConfig returns the default recommendation tuning.
func DefaultRecommendConfig() models.RecommendConfig {
	return models.RecommendConfig{
		HighCutoff:      DefaultHighCutoff,
		MediumCutoff:    DefaultMediumCutoff,
		MaxAlternatives: DefaultMaxAlternatives,
	}
}

// Recommender suggests the integration flow or operation that best fits
// a free-text use case. Low-confidence picks always surface their
// alternatives instead of silently guessing.
type Recommender interface {
	RecommendFlow(useCase string) *models.FlowRecommendation
	RecommendOperation(useCase string) *models.OperationRecommendation
}

type recommender struct {
	knowledge  storage.KnowledgeStore
	flows      storage.FlowStore
	classifier FlowClassifier
	cfg        models.RecommendConfig
	thresholds models.FuzzyThresholds
}

// NewRecommender creates a Recommender over the given stores and
// classifier.
func NewRecommender(knowledge storage.KnowledgeStore, flows storage.FlowStore, classifier FlowClassifier, cfg models.RecommendConfig, thresholds models.FuzzyThresholds) Recommender {
	if cfg.HighCutoff <= 0 {
		cfg = DefaultRecommendConfig()
	}
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = DefaultMaxAlternatives
	}
	if thresholds.Keyword <= 0 {
		thresholds = DefaultThresholds()
	}
	return &recommender{
		knowledge:  knowledge,
		flows:      flows,
		classifier: classifier,
		cfg:        cfg,
		thresholds: thresholds,
	}
}

func (r *recommender) RecommendFlow(useCase string) *models.FlowRecommendation {
	erp := r.knowledge.ERP()
	cls := r.classifier.Classify(useCase)

	summary := fmt.Sprintf("The %s fits this use case.", cls.Flow)
	if flow, ok := r.flows.Flow(cls.Flow); ok && flow.Description != "" {
		summary = flow.Description
	}

	rec := &models.FlowRecommendation{
		FlowName:         cls.Flow,
		Confidence:       cls.Confidence,
		Summary:          summary,
		Reasoning:        cls.Reasoning,
		AlternativeFlows: cls.Alternatives,
		NextActions: append([]models.NextAction{
			NextAction(erp, ToolGetFlowDetails, fmt.Sprintf("Read the %s anatomy, constants, and critical files", cls.Flow), map[string]string{"flowName": cls.Flow}),
		}, browseActions(erp)...),
	}

	// A low-confidence pick should steer the caller toward refinement
	// rather than pretend certainty.
	if cls.Confidence == models.ConfidenceLow {
		rec.NextActions = append(rec.NextActions,
			NextAction(erp, ToolQueryKnowledge, "Refine the use case with entity and action keywords, then search again", map[string]string{"query": firstWords(useCase, 4)}),
		)
	}

	return rec
}

func (r *recommender) RecommendOperation(useCase string) *models.OperationRecommendation {
	erp := r.knowledge.ERP()
	tokens := Tokenize(useCase)

	type scored struct {
		op    models.Operation
		score float64
	}
	var candidates []scored
	for _, op := range r.knowledge.AllOperations() {
		if s := r.scoreOperation(tokens, op); s > 0 {
			candidates = append(candidates, scored{op: op, score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) == 0 {
		return &models.OperationRecommendation{
			Confidence: models.ConfidenceLow,
			Summary:    fmt.Sprintf("No operation matches %q.", useCase),
			Reasoning:  "none of the use-case keywords overlap with any operation's name, summary, or category",
			NextActions: append([]models.NextAction{
				NextAction(erp, ToolRecommendFlow, "Ask for a flow-level recommendation instead", map[string]string{"useCase": useCase}),
			}, browseActions(erp)...),
		}
	}

	top := candidates[0]
	rec := &models.OperationRecommendation{
		Method:     top.op.Method,
		Confidence: r.bucket(top.score),
		Summary:    top.op.Summary,
		Reasoning: fmt.Sprintf("%d of %d use-case keywords overlap with %s (%s category), scoring %.0f%%",
			matchedTokenCount(top.score, len(tokens)), len(tokens), top.op.Method, top.op.Category, top.score*100),
		NextActions: append([]models.NextAction{
			NextAction(erp, ToolValidateRequest, fmt.Sprintf("Validate a draft %s payload", top.op.Method), map[string]string{"operation": top.op.Method}),
		}, browseActions(erp)...),
	}

	for _, alt := range candidates[1:] {
		if len(rec.Alternatives) >= r.cfg.MaxAlternatives {
			break
		}
		rec.Alternatives = append(rec.Alternatives, models.AlternativeOperation{
			Method:   alt.op.Method,
			Summary:  alt.op.Summary,
			TradeOff: fmt.Sprintf("scores %.0f%% vs %.0f%% for the primary pick; prefer it when the use case is about %s", alt.score*100, top.score*100, alt.op.Category),
		})
	}

	return rec
}

// scoreOperation measures keyword overlap between the use-case tokens
// and the operation's name, summary, and category, normalized to [0,1].
func (r *recommender) scoreOperation(tokens []string, op models.Operation) float64 {
	if len(tokens) == 0 {
		return 0
	}

	text := strings.ToLower(op.Method + " " + op.Summary + " " + op.Category)
	words := splitWords(text)

	var total float64
	for _, token := range tokens {
		if strings.Contains(text, token) {
			total += 1.0
			continue
		}
		if best, ok := FindBestMatch(token, words, r.thresholds.Keyword); ok {
			total += best.Confidence
		}
	}
	return total / float64(len(tokens))
}

func (r *recommender) bucket(score float64) models.Confidence {
	switch {
	case score >= r.cfg.HighCutoff:
		return models.ConfidenceHigh
	case score >= r.cfg.MediumCutoff:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// matchedTokenCount approximates how many tokens contributed to a
// normalized score, for the reasoning sentence.
func matchedTokenCount(score float64, tokens int) int {
	n := int(score*float64(tokens) + 0.5)
	if n > tokens {
		n = tokens
	}
	return n
}
