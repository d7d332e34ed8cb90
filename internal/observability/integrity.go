package observability

import (
	"fmt"
	"strconv"
	"strings"

	"erpmcp/internal/storage"
)

// FindingSeverity grades an integrity finding.
type FindingSeverity string

const (
	SeverityWarning FindingSeverity = "warning"
	SeverityInfo    FindingSeverity = "info"
)

// Finding is one inconsistency detected in a loaded knowledge set.
// Findings never block startup: the knowledge set loads permissively and
// inconsistencies surface here for inspection.
type Finding struct {
	Rule     string          `json:"rule"`
	Severity FindingSeverity `json:"severity"`
	Message  string          `json:"message"`
}

// IntegrityChecker evaluates referential-integrity rules over one ERP's
// loaded knowledge set.
type IntegrityChecker interface {
	Check() []Finding
}

type integrityChecker struct {
	knowledge storage.KnowledgeStore
	flows     storage.FlowStore
}

// NewIntegrityChecker creates an IntegrityChecker over the given stores.
// flows may be nil for knowledge-only ERPs; flow rules are skipped then.
func NewIntegrityChecker(knowledge storage.KnowledgeStore, flows storage.FlowStore) IntegrityChecker {
	return &integrityChecker{knowledge: knowledge, flows: flows}
}

func (c *integrityChecker) Check() []Finding {
	var findings []Finding
	findings = append(findings, c.checkCategoryCounts()...)
	if c.flows != nil {
		findings = append(findings, c.checkFlowReferences()...)
		findings = append(findings, c.checkOperationCoverage()...)
		findings = append(findings, c.checkConstantValues()...)
	}
	return findings
}

// checkCategoryCounts compares each category's declared operation count
// against what actually loaded.
func (c *integrityChecker) checkCategoryCounts() []Finding {
	var findings []Finding
	for _, cat := range c.knowledge.Categories() {
		actual := len(c.knowledge.OperationsByCategory(cat.Name))
		if cat.OperationCount > 0 && cat.OperationCount != actual {
			findings = append(findings, Finding{
				Rule:     "category_count_mismatch",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("category %q declares %d operations but %d loaded", cat.Name, cat.OperationCount, actual),
			})
		}
	}
	return findings
}

// checkFlowReferences flags flow used-by entries that resolve to no
// loaded operation.
func (c *integrityChecker) checkFlowReferences() []Finding {
	var findings []Finding
	for _, flow := range c.flows.AllFlows() {
		for _, method := range flow.UsedByOperations {
			if _, ok := c.knowledge.FindOperation(method); !ok {
				findings = append(findings, Finding{
					Rule:     "dangling_flow_reference",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("flow %q lists operation %q, which is not in the knowledge set", flow.Name, method),
				})
			}
		}
	}
	return findings
}

// checkOperationCoverage flags operations no flow claims. Uncovered
// operations still work for lookups but cannot be validated.
func (c *integrityChecker) checkOperationCoverage() []Finding {
	var findings []Finding
	for _, op := range c.knowledge.AllOperations() {
		if _, ok := c.flows.FlowForOperation(op.Method); !ok {
			findings = append(findings, Finding{
				Rule:     "operation_without_flow",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("operation %q is not covered by any flow", op.Method),
			})
		}
	}
	return findings
}

// checkConstantValues flags flow constants whose name suggests a numeric
// limit but whose value does not parse as a number, since validation
// provenance matches limits by value.
func (c *integrityChecker) checkConstantValues() []Finding {
	var findings []Finding
	for _, flow := range c.flows.AllFlows() {
		for name, constant := range flow.Constants {
			upper := strings.ToUpper(name)
			if !strings.Contains(upper, "MAX") && !strings.Contains(upper, "SIZE") && !strings.Contains(upper, "LENGTH") {
				continue
			}
			if _, err := strconv.Atoi(constant.Value); err != nil {
				findings = append(findings, Finding{
					Rule:     "non_numeric_limit_constant",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("flow %q constant %q looks like a numeric limit but has value %q", flow.Name, name, constant.Value),
				})
			}
		}
	}
	return findings
}
