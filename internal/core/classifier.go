package core

import (
	"strings"
	"unicode"

	"erpmcp/pkg/models"
)

// Canonical flow names of the Acumatica connector knowledge set. The
// classifier rule table and the embedded flow documents share these.
const (
	FlowStandardImport   = "standard_import_flow"
	FlowVendorExport     = "vendor_export_flow"
	FlowBillExport       = "bill_export_flow"
	FlowPaymentExport    = "payment_export_flow"
	FlowPOExport         = "purchase_order_export_flow"
	FlowPOMatchingSingle = "po_matching_single_flow"
	FlowPOMatchingFull   = "po_matching_full_import_flow"
	FlowM2MImport        = "m2m_import_flow"
	FlowAPIAction        = "api_action_flow"
)

// FlowRule is one row of the classifier's decision table.
type FlowRule struct {
	Flow       string
	Confidence models.Confidence
	Reasoning  string
	Fallback   bool
	Matches    func(t *useCaseText) bool
}

// FlowClassification is the outcome of classifying a free-text use case.
type FlowClassification struct {
	Flow         string
	Confidence   models.Confidence
	Reasoning    string
	Alternatives []models.AlternativeFlow
}

// FlowClassifier maps a free-text use-case description to an integration
// flow. The rule table is evaluated top to bottom, first match wins; the
// ordering puts specific shapes (entity exports, PO matching, M2M) before
// the broad paginated-import catch-all so narrow cases never fall into
// the default.
type FlowClassifier interface {
	Classify(useCase string) FlowClassification
}

type ruleClassifier struct {
	rules     []FlowRule
	threshold float64
}

// NewFlowClassifier creates a FlowClassifier over the given rule table.
// threshold is the fuzzy threshold used by term tests. It must stay
// strict enough to keep near-antonyms apart: at 0.60, "import" scores
// 0.67 against "export" and every import use case lands in an export
// flow.
func NewFlowClassifier(rules []FlowRule, threshold float64) FlowClassifier {
	if threshold <= 0 {
		threshold = DefaultOperationNameThreshold
	}
	return &ruleClassifier{rules: rules, threshold: threshold}
}

func (c *ruleClassifier) Classify(useCase string) FlowClassification {
	t := newUseCaseText(useCase, c.threshold)

	var primary *FlowRule
	var alternatives []models.AlternativeFlow
	for i := range c.rules {
		rule := &c.rules[i]
		if !rule.Matches(t) {
			continue
		}
		if primary == nil {
			primary = rule
			continue
		}
		if rule.Fallback || rule.Flow == primary.Flow || len(alternatives) >= 2 {
			continue
		}
		duplicate := false
		for _, alt := range alternatives {
			if alt.Name == rule.Flow {
				duplicate = true
				break
			}
		}
		if !duplicate {
			alternatives = append(alternatives, models.AlternativeFlow{
				Name:      rule.Flow,
				Reasoning: rule.Reasoning,
			})
		}
	}

	if primary == nil {
		// The table always ends in a fallback row, so this only happens
		// with an empty rule set.
		return FlowClassification{
			Flow:       FlowStandardImport,
			Confidence: models.ConfidenceLow,
			Reasoning:  "no specific integration pattern detected; defaulting to the standard paginated import flow",
		}
	}

	return FlowClassification{
		Flow:         primary.Flow,
		Confidence:   primary.Confidence,
		Reasoning:    primary.Reasoning,
		Alternatives: alternatives,
	}
}

// DefaultFlowRules builds the Acumatica connector's rule table.
func DefaultFlowRules() []FlowRule {
	return []FlowRule{
		{
			Flow:       FlowVendorExport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case mentions exporting or creating vendors, which the vendor export flow covers end to end",
			Matches: func(t *useCaseText) bool {
				return t.has("vendor") && t.hasAny("export", "create")
			},
		},
		{
			Flow:       FlowBillExport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case mentions exporting or creating bills/invoices, handled by the bill export flow",
			Matches: func(t *useCaseText) bool {
				return t.hasAny("bill", "invoice") && t.hasAny("export", "create")
			},
		},
		{
			Flow:       FlowPaymentExport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case mentions exporting or creating payments, handled by the payment export flow",
			Matches: func(t *useCaseText) bool {
				return t.has("payment") && t.hasAny("export", "create")
			},
		},
		{
			Flow:       FlowPOExport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case mentions exporting or creating purchase orders, handled by the purchase order export flow",
			Matches: func(t *useCaseText) bool {
				return t.hasAny("purchase order", "po") && t.hasAny("export", "create")
			},
		},
		{
			Flow:       FlowPOMatchingFull,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case asks for PO matching across all or closed purchase orders, which needs the full-import matching variant",
			Matches: func(t *useCaseText) bool {
				return t.has("po matching") && t.hasAny("all", "closed")
			},
		},
		{
			Flow:       FlowPOMatchingSingle,
			Confidence: models.ConfidenceMedium,
			Reasoning:  "use case mentions matching purchase orders, handled by the single-PO matching flow",
			Matches: func(t *useCaseText) bool {
				return t.has("po matching") || (t.has("purchase order") && t.has("match"))
			},
		},
		{
			Flow:       FlowM2MImport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case describes a many-to-many relationship import, handled by the M2M import flow",
			Matches: func(t *useCaseText) bool {
				if t.hasAny("m2m", "many to many") {
					return true
				}
				return (t.has("branch") && t.has("project")) ||
					(t.has("project") && t.has("task")) ||
					(t.has("task") && t.has("cost code"))
			},
		},
		{
			Flow:       FlowAPIAction,
			Confidence: models.ConfidenceMedium,
			Reasoning:  "use case mentions invoking a document action (void/release), handled by the generic API action flow",
			Matches: func(t *useCaseText) bool {
				return t.hasAny("void", "release", "action")
			},
		},
		{
			Flow:       FlowStandardImport,
			Confidence: models.ConfidenceHigh,
			Reasoning:  "use case describes importing or retrieving records, which the standard paginated import flow covers",
			Matches: func(t *useCaseText) bool {
				return t.hasAny("import", "get", "retrieve", "fetch") ||
					t.hasAny("vendor", "account", "item", "tax", "custom field")
			},
		},
		{
			Flow:       FlowStandardImport,
			Confidence: models.ConfidenceLow,
			Reasoning:  "no specific integration pattern detected; defaulting to the standard paginated import flow",
			Fallback:   true,
			Matches:    func(t *useCaseText) bool { return true },
		},
	}
}

// useCaseText precomputes the lowercased, separator-normalized form of a
// use-case description plus its word list for term tests.
type useCaseText struct {
	text      string
	words     []string
	threshold float64
}

func newUseCaseText(s string, threshold float64) *useCaseText {
	lower := strings.ToLower(s)
	normalized := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, lower)
	return &useCaseText{
		text:      normalized,
		words:     splitWords(normalized),
		threshold: threshold,
	}
}

// has reports whether the text mentions term. Multi-word phrases are
// matched as substrings. Single words match an exact word, a fuzzy word
// within the keyword threshold (so "vendr" still hits "vendor"), or a
// plain substring for terms long enough that substrings are unambiguous.
func (t *useCaseText) has(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(term, " ") {
		return strings.Contains(t.text, term)
	}
	if len(term) >= 4 && strings.Contains(t.text, term) {
		return true
	}

	m := NewMatcher(term)
	for _, w := range t.words {
		if w == term || m.Confidence(w) >= t.threshold {
			return true
		}
	}
	return false
}

func (t *useCaseText) hasAny(terms ...string) bool {
	for _, term := range terms {
		if t.has(term) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
