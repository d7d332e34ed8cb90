package models

// Confidence is the coarse confidence label attached to classifications
// and recommendations.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// NextAction is a follow-up tool invocation suggested alongside a result.
// Tool always names a tool registered on the server; URI encodes the tool
// plus suggested arguments in erpmcp://<erp>/<tool>?arg=... form.
type NextAction struct {
	Tool        string `json:"tool"`
	Description string `json:"description"`
	URI         string `json:"uri"`
}

// OperationSummary is the compact operation shape returned by searches
// and listings.
type OperationSummary struct {
	Method   string `json:"method"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Flow     string `json:"flow,omitempty"`
}

// FlowSummary is the compact flow shape returned by searches and listings.
type FlowSummary struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	UsedByOperations []string `json:"usedByOperations,omitempty"`
}

// QueryResult is the structured answer to a knowledge query. Constants,
// validation rules, and code examples are global reference tables
// aggregated across all flows, not filtered by query relevance.
type QueryResult struct {
	Summary           string                  `json:"summary"`
	MatchedOperations []OperationSummary      `json:"matchedOperations"`
	RelevantFlows     []FlowSummary           `json:"relevantFlows"`
	Constants         map[string]FlowConstant `json:"constants,omitempty"`
	ValidationRules   []string                `json:"validationRules,omitempty"`
	CodeExamples      map[string]string       `json:"codeExamples,omitempty"`
	NextActions       []NextAction            `json:"nextActions"`
}

// RuleSource cites where a validation rule's limit originates.
type RuleSource struct {
	Constant string `json:"constant,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// ValidationError is one field-level rule violation.
type ValidationError struct {
	Field   string      `json:"field,omitempty"`
	Rule    string      `json:"rule"`
	Message string      `json:"message"`
	Source  *RuleSource `json:"source,omitempty"`
}

// ValidationResult is the outcome of checking a request payload against
// the owning flow's rules. SuggestedPayload is only populated when every
// failure is a missing required field; it is a suggestion, never applied.
type ValidationResult struct {
	IsValid          bool              `json:"isValid"`
	Operation        string            `json:"operation"`
	Flow             string            `json:"flow,omitempty"`
	Errors           []ValidationError `json:"errors"`
	SuggestedPayload map[string]any    `json:"suggestedPayload,omitempty"`
	Summary          string            `json:"summary"`
	NextActions      []NextAction      `json:"nextActions"`
}

// AlternativeFlow is a runner-up flow in a recommendation.
type AlternativeFlow struct {
	Name      string `json:"name"`
	Reasoning string `json:"reasoning,omitempty"`
}

// FlowRecommendation is the answer to "which flow fits this use case".
type FlowRecommendation struct {
	FlowName         string            `json:"flowName"`
	Confidence       Confidence        `json:"confidence"`
	Summary          string            `json:"summary"`
	Reasoning        string            `json:"reasoning"`
	AlternativeFlows []AlternativeFlow `json:"alternativeFlows"`
	NextActions      []NextAction      `json:"nextActions"`
}

// AlternativeOperation is a runner-up operation in a recommendation,
// with a one-line trade-off note against the primary pick.
type AlternativeOperation struct {
	Method   string `json:"method"`
	Summary  string `json:"summary,omitempty"`
	TradeOff string `json:"tradeOff,omitempty"`
}

// OperationRecommendation is the answer to "which operation fits this
// use case".
type OperationRecommendation struct {
	Method       string                 `json:"method"`
	Confidence   Confidence             `json:"confidence"`
	Summary      string                 `json:"summary"`
	Reasoning    string                 `json:"reasoning"`
	Alternatives []AlternativeOperation `json:"alternatives"`
	NextActions  []NextAction           `json:"nextActions"`
}

// RelatedError is a sibling error from the same operation, shown with a
// diagnostic so a caller can spot adjacent failure modes.
type RelatedError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// ErrorDiagnostic is the structured answer to "what does this error mean".
type ErrorDiagnostic struct {
	ErrorCategory  string         `json:"errorCategory"`
	Operation      string         `json:"operation,omitempty"`
	Summary        string         `json:"summary"`
	PossibleCauses []string       `json:"possibleCauses"`
	Solutions      []string       `json:"solutions,omitempty"`
	PreventionTips []string       `json:"preventionTips,omitempty"`
	RelatedErrors  []RelatedError `json:"relatedErrors,omitempty"`
	ExamplePayload map[string]any `json:"examplePayload,omitempty"`
	NextActions    []NextAction   `json:"nextActions"`
}
