package core

import (
	"fmt"
	"sort"
	"strings"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Error categories produced by the diagnoser.
const (
	CategoryRequiredField   = "RequiredField"
	CategoryLengthViolation = "LengthViolation"
	CategoryFormatError     = "FormatError"
	CategoryBusinessLogic   = "BusinessLogic"
	CategoryValidation      = "Validation"
	CategoryAuthentication  = "Authentication"
	CategoryUnknown         = "Unknown"

	// CategoryUnsupported marks responses from ERPs that have no
	// diagnostic (or recommendation) service registered. It lets callers
	// distinguish "this ERP can't do X" from "X failed".
	CategoryUnsupported = "Unsupported"
)

// Diagnoser explains an error message by matching it against the ERP's
// error catalog.
type Diagnoser interface {
	Diagnose(errorText string) *models.ErrorDiagnostic
}

type diagnoser struct {
	knowledge  storage.KnowledgeStore
	thresholds models.FuzzyThresholds
}

// NewDiagnoser creates a Diagnoser over the given knowledge store.
func NewDiagnoser(knowledge storage.KnowledgeStore, thresholds models.FuzzyThresholds) Diagnoser {
	if thresholds.ErrorMessage <= 0 {
		thresholds = DefaultThresholds()
	}
	return &diagnoser{knowledge: knowledge, thresholds: thresholds}
}

// catalogEntry flattens one error of the catalog with its owner.
type catalogEntry struct {
	operation string
	kind      string
	err       models.CatalogError
}

func (d *diagnoser) Diagnose(errorText string) *models.ErrorDiagnostic {
	erp := d.knowledge.ERP()
	entries := d.flattenCatalog()

	match, found := matchCatalog(errorText, entries, d.thresholds.ErrorMessage)
	if !found {
		return &models.ErrorDiagnostic{
			ErrorCategory: CategoryUnknown,
			Summary:       fmt.Sprintf("No known error matches %q.", errorText),
			PossibleCauses: []string{
				"the error originates outside the connector (network, ERP outage, middleware)",
				"the error message was truncated or rephrased before reaching the catalog lookup",
			},
			NextActions: append([]models.NextAction{
				NextAction(erp, ToolQueryKnowledge, "Search the knowledge set with a shorter fragment of the error", map[string]string{"query": firstWords(errorText, 4)}),
			}, browseActions(erp)...),
		}
	}

	category := categorizeError(match)
	diag := &models.ErrorDiagnostic{
		ErrorCategory:  category,
		Operation:      match.operation,
		Summary:        fmt.Sprintf("Matched known error of %s: %q.", ownerLabel(match), match.err.Message),
		PossibleCauses: possibleCauses(match, category),
		Solutions:      solutions(match, category),
		PreventionTips: preventionTips(category),
		NextActions:    browseActions(erp),
	}

	if match.operation != "" {
		diag.RelatedErrors = d.relatedErrors(match, entries)
		if op, ok := d.knowledge.FindOperation(match.operation); ok {
			diag.ExamplePayload = ExamplePayload(op)
			diag.NextActions = append([]models.NextAction{
				NextAction(erp, ToolValidateRequest, fmt.Sprintf("Validate your %s payload against its flow rules", op.Method), map[string]string{"operation": op.Method}),
			}, diag.NextActions...)
		}
	}

	return diag
}

func (d *diagnoser) flattenCatalog() []catalogEntry {
	catalog := d.knowledge.ErrorCatalog()
	var entries []catalogEntry

	for _, e := range catalog.Authentication {
		entries = append(entries, catalogEntry{kind: "authentication", err: e})
	}

	ops := make([]string, 0, len(catalog.Operations))
	for op := range catalog.Operations {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		for _, e := range catalog.Operations[op].Validation {
			entries = append(entries, catalogEntry{operation: op, kind: "validation", err: e})
		}
		for _, e := range catalog.Operations[op].BusinessLogic {
			entries = append(entries, catalogEntry{operation: op, kind: "businessLogic", err: e})
		}
	}

	for _, e := range catalog.API {
		entries = append(entries, catalogEntry{kind: "api", err: e})
	}

	return entries
}

// matchCatalog finds the first entry whose message contains errorText
// (case-insensitively), then falls back to fuzzy matching at the error
// message threshold.
func matchCatalog(errorText string, entries []catalogEntry, threshold float64) (catalogEntry, bool) {
	needle := strings.ToLower(strings.TrimSpace(errorText))
	if needle == "" {
		return catalogEntry{}, false
	}

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.err.Message), needle) {
			return e, true
		}
	}

	m := NewMatcher(errorText)
	for _, e := range entries {
		if m.Confidence(e.err.Message) >= threshold {
			return e, true
		}
	}

	return catalogEntry{}, false
}

func (d *diagnoser) relatedErrors(match catalogEntry, entries []catalogEntry) []models.RelatedError {
	var related []models.RelatedError
	for _, e := range entries {
		if e.operation != match.operation || e.err.Message == match.err.Message {
			continue
		}
		related = append(related, models.RelatedError{Message: e.err.Message, Type: e.err.Type})
		if len(related) == 3 {
			break
		}
	}
	return related
}

// categorizeError derives a coarse category from keyword cues in the
// matched message, preferring the catalog's own section for
// authentication and business-logic errors.
func categorizeError(e catalogEntry) string {
	switch e.kind {
	case "authentication":
		return CategoryAuthentication
	case "businessLogic":
		return CategoryBusinessLogic
	}

	msg := strings.ToLower(e.err.Message)
	switch {
	case strings.Contains(msg, "required"):
		return CategoryRequiredField
	case strings.Contains(msg, "exceed"), strings.Contains(msg, "length"):
		return CategoryLengthViolation
	case strings.Contains(msg, "invalid"):
		return CategoryFormatError
	case strings.Contains(msg, "duplicate"):
		return CategoryBusinessLogic
	default:
		return CategoryValidation
	}
}

func possibleCauses(e catalogEntry, category string) []string {
	var causes []string
	if e.err.Condition != "" {
		causes = append(causes, fmt.Sprintf("triggered when %s", e.err.Condition))
	}

	switch category {
	case CategoryRequiredField:
		causes = append(causes, fmt.Sprintf("the request payload omits a required field%s", fieldSuffix(e)))
	case CategoryLengthViolation:
		causes = append(causes, fmt.Sprintf("a field value is longer than the ERP column allows%s", fieldSuffix(e)))
	case CategoryFormatError:
		causes = append(causes, fmt.Sprintf("a field value does not match the expected format%s", fieldSuffix(e)))
	case CategoryBusinessLogic:
		causes = append(causes, "the request conflicts with existing ERP state (duplicates, closed documents, posted periods)")
	case CategoryAuthentication:
		causes = append(causes, "credentials are wrong, expired, or the session cookie was not refreshed")
	default:
		causes = append(causes, "the request payload violates a connector validation rule")
	}

	if loc := e.err.Location; loc != nil {
		causes = append(causes, fmt.Sprintf("raised at %s:%s in the connector source", loc.File, loc.Lines))
	}
	return causes
}

func solutions(e catalogEntry, category string) []string {
	switch category {
	case CategoryRequiredField:
		return []string{
			fmt.Sprintf("add the missing field%s to the request payload", fieldSuffix(e)),
			"run validate_request before submitting to catch missing fields early",
		}
	case CategoryLengthViolation:
		return []string{
			fmt.Sprintf("truncate or remap the field%s to fit the documented maximum length", fieldSuffix(e)),
			"check the flow constants for the exact limit and its source location",
		}
	case CategoryFormatError:
		return []string{fmt.Sprintf("reformat the field%s to the documented type and pattern", fieldSuffix(e))}
	case CategoryBusinessLogic:
		return []string{"query the ERP for the conflicting record before retrying", "use a unique external reference for create operations"}
	case CategoryAuthentication:
		return []string{"re-authenticate and retry with a fresh session", "verify the endpoint, tenant, and credentials configuration"}
	default:
		return []string{"validate the payload against the owning flow's rules with validate_request"}
	}
}

func preventionTips(category string) []string {
	switch category {
	case CategoryRequiredField, CategoryLengthViolation, CategoryFormatError, CategoryValidation:
		return []string{
			"validate every payload with validate_request before submission",
			"derive payloads from the operation's documented field contract, not from sample responses",
		}
	case CategoryBusinessLogic:
		return []string{"check for existing records before create/export operations"}
	case CategoryAuthentication:
		return []string{"refresh sessions proactively; never cache credentials beyond their lifetime"}
	default:
		return nil
	}
}

// ExamplePayload builds a representative valid payload for an operation
// by substituting sample values per field type.
func ExamplePayload(op models.Operation) map[string]any {
	payload := make(map[string]any, len(op.RequiredFields))
	for _, field := range sortedFieldNames(op.RequiredFields) {
		payload[field] = sampleValue(field, op.RequiredFields[field])
	}
	return payload
}

func sampleValue(field string, spec models.FieldSpec) any {
	switch strings.ToLower(spec.Type) {
	case "number", "integer", "int", "decimal":
		return 100
	case "boolean", "bool":
		return true
	default:
		if spec.Example != "" {
			return spec.Example
		}
		return fmt.Sprintf("sample-%s", strings.ToLower(field))
	}
}

func fieldSuffix(e catalogEntry) string {
	if e.err.Field == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", e.err.Field)
}

func ownerLabel(e catalogEntry) string {
	if e.operation != "" {
		return fmt.Sprintf("operation %s", e.operation)
	}
	return fmt.Sprintf("the %s error set", e.kind)
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
