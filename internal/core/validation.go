package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// Rule identifiers attached to validation errors. Length and ceiling
// rules carry their limit, e.g. max_length_15 or max_pagination_2000.
const (
	RuleRequiredFields   = "required_fields"
	RuleInvalidJSON      = "invalid_json"
	RuleUnknownOperation = "unknown_operation"
	RuleFlowNotFound     = "flow_not_found"
)

// Validator checks request payloads against the validation rules of the
// operation's owning flow. Validate never fails: malformed input and
// unknown operations come back as validation errors, not Go errors.
type Validator interface {
	Validate(operation, payloadJSON string) *models.ValidationResult
}

type validator struct {
	knowledge storage.KnowledgeStore
	flows     storage.FlowStore
}

// NewValidator creates a Validator over the given stores.
func NewValidator(knowledge storage.KnowledgeStore, flows storage.FlowStore) Validator {
	return &validator{knowledge: knowledge, flows: flows}
}

func (v *validator) Validate(operation, payloadJSON string) *models.ValidationResult {
	erp := v.knowledge.ERP()
	result := &models.ValidationResult{
		Operation:   operation,
		Errors:      []models.ValidationError{},
		NextActions: browseActions(erp),
	}

	op, ok := v.knowledge.FindOperation(operation)
	if !ok {
		result.Errors = append(result.Errors, models.ValidationError{
			Rule:    RuleUnknownOperation,
			Message: fmt.Sprintf("unknown operation %q; use list_operations to discover available operations", operation),
		})
		result.Summary = fmt.Sprintf("Operation %q is not known to this ERP.", operation)
		return result
	}
	result.Operation = op.Method

	flowName, hasFlow := v.flows.FlowForOperation(op.Method)
	if !hasFlow {
		result.Errors = append(result.Errors, models.ValidationError{
			Rule:    RuleFlowNotFound,
			Message: fmt.Sprintf("operation %q is not mapped to any integration flow, so no validation rules apply", op.Method),
		})
		result.Summary = fmt.Sprintf("No integration flow owns %q; nothing to validate against.", op.Method)
		return result
	}
	result.Flow = flowName
	flow, _ := v.flows.Flow(flowName)

	payload, parseErr := parsePayload(payloadJSON)
	if parseErr != "" {
		result.Errors = append(result.Errors, models.ValidationError{
			Rule:    RuleInvalidJSON,
			Message: parseErr,
		})
		result.Summary = fmt.Sprintf("Could not parse the request payload for %q.", op.Method)
		return result
	}

	var missing []string
	for _, field := range sortedFieldNames(op.RequiredFields) {
		if value, present := payload[field]; !present || value == nil {
			missing = append(missing, field)
			result.Errors = append(result.Errors, models.ValidationError{
				Field:   field,
				Rule:    RuleRequiredFields,
				Message: fmt.Sprintf("required field %q is missing", field),
			})
		}
	}

	checkLimits := func(fields map[string]models.FieldSpec) {
		for _, field := range sortedFieldNames(fields) {
			value, present := payload[field]
			if !present {
				continue
			}
			spec := fields[field]

			if s, ok := value.(string); ok && spec.MaxLength > 0 && len([]rune(s)) > spec.MaxLength {
				result.Errors = append(result.Errors, models.ValidationError{
					Field:   field,
					Rule:    fmt.Sprintf("max_length_%d", spec.MaxLength),
					Message: fmt.Sprintf("field %q exceeds the maximum length of %d characters", field, spec.MaxLength),
					Source:  constantForLimit(flow, spec.MaxLength),
				})
			}

			if n, ok := value.(float64); ok && spec.Max > 0 && n > spec.Max {
				limit := int(spec.Max)
				rule := fmt.Sprintf("max_value_%d", limit)
				if isPaginationField(field) {
					rule = fmt.Sprintf("max_pagination_%d", limit)
				}
				result.Errors = append(result.Errors, models.ValidationError{
					Field:   field,
					Rule:    rule,
					Message: fmt.Sprintf("field %q exceeds the maximum of %d", field, limit),
					Source:  constantForLimit(flow, limit),
				})
			}
		}
	}
	checkLimits(op.RequiredFields)
	checkLimits(op.OptionalFields)

	result.IsValid = len(result.Errors) == 0

	if result.IsValid {
		result.Summary = fmt.Sprintf("Request payload for %q passes all %s rules.", op.Method, flowName)
	} else {
		result.Summary = fmt.Sprintf("Request payload for %q violates %d rule(s) of %s.", op.Method, len(result.Errors), flowName)
	}

	// Offer a patched payload only when every failure is a missing
	// required field; the placeholders are a suggestion, never applied.
	if len(missing) > 0 && len(missing) == len(result.Errors) {
		suggested := make(map[string]any, len(payload)+len(missing))
		for k, v := range payload {
			suggested[k] = v
		}
		for _, field := range missing {
			suggested[field] = fmt.Sprintf("<TODO: provide %s>", field)
		}
		result.SuggestedPayload = suggested
	}

	result.NextActions = append([]models.NextAction{
		NextAction(erp, ToolGetFlowDetails, fmt.Sprintf("Review the %s rules and constants", flowName), map[string]string{"flowName": flowName}),
	}, result.NextActions...)

	return result
}

// parsePayload decodes the payload into an object, returning a
// caller-facing message on failure. An empty payload counts as an empty
// object.
func parsePayload(payloadJSON string) (map[string]any, string) {
	trimmed := strings.TrimSpace(payloadJSON)
	if trimmed == "" {
		return map[string]any{}, ""
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Sprintf("could not parse payload as a JSON object: %s", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, ""
}

// constantForLimit finds the flow constant whose value equals the limit,
// giving the validation error its provenance citation.
func constantForLimit(flow models.Flow, limit int) *models.RuleSource {
	want := strconv.Itoa(limit)
	names := make([]string, 0, len(flow.Constants))
	for name := range flow.Constants {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := flow.Constants[name]
		if c.Value == want {
			return &models.RuleSource{Constant: name, File: c.File, Line: c.Line}
		}
	}
	return nil
}

func isPaginationField(field string) bool {
	lower := strings.ToLower(field)
	return strings.Contains(lower, "page") || strings.Contains(lower, "size")
}

func sortedFieldNames(fields map[string]models.FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
