// Package mcp exposes the ERP knowledge services as MCP tools for AI
// coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"erpmcp/internal/core"
	"erpmcp/internal/erp"
	"erpmcp/internal/logging"
	"erpmcp/internal/observability"
	"erpmcp/pkg/models"
)

// Server wraps the ERP registry and exposes it as MCP tools.
type Server struct {
	server   *gomcp.Server
	registry *erp.Registry
	audit    observability.AuditLog
	logger   *logging.Logger
	version  string
}

// NewServer creates an MCP server over the given registry. audit may be
// nil when auditing is disabled.
func NewServer(registry *erp.Registry, audit observability.AuditLog, logger *logging.Logger, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		registry: registry,
		audit:    audit,
		logger:   logger,
		version:  version,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "erpmcp", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type queryKnowledgeInput struct {
	ERP   string `json:"erp" jsonschema:"required,the ERP key or alias (e.g. acumatica)"`
	Query string `json:"query" jsonschema:"required,free-text search query; * or an empty query matches everything"`
	Scope string `json:"scope,omitempty" jsonschema:"search scope: operations, flows, constants, or all (default all)"`
}

type listOperationsInput struct {
	ERP string `json:"erp" jsonschema:"required,the ERP key or alias"`
}

type listOperationsOutput struct {
	Operations  []models.OperationSummary `json:"operations"`
	Count       int                       `json:"count"`
	Summary     string                    `json:"summary"`
	NextActions []models.NextAction       `json:"nextActions"`
}

type listFlowsInput struct {
	ERP string `json:"erp" jsonschema:"required,the ERP key or alias"`
}

type listFlowsOutput struct {
	Flows       []models.FlowSummary `json:"flows"`
	Count       int                  `json:"count"`
	Summary     string               `json:"summary"`
	NextActions []models.NextAction  `json:"nextActions"`
}

type getFlowDetailsInput struct {
	ERP      string `json:"erp" jsonschema:"required,the ERP key or alias"`
	FlowName string `json:"flowName" jsonschema:"required,flow name; case and separator style do not matter"`
}

type getFlowDetailsOutput struct {
	Found            bool                           `json:"found"`
	Name             string                         `json:"name,omitempty"`
	Description      string                         `json:"description,omitempty"`
	Anatomy          []models.FlowStep              `json:"anatomy,omitempty"`
	Constants        map[string]models.FlowConstant `json:"constants,omitempty"`
	ValidationRules  []string                       `json:"validationRules,omitempty"`
	CodeSnippets     map[string]string              `json:"codeSnippets,omitempty"`
	CriticalFiles    []models.CriticalFile          `json:"criticalFiles,omitempty"`
	UsedByOperations []string                       `json:"usedByOperations,omitempty"`
	Summary          string                         `json:"summary"`
	NextActions      []models.NextAction            `json:"nextActions"`
}

type recommendFlowInput struct {
	ERP     string `json:"erp" jsonschema:"required,the ERP key or alias"`
	UseCase string `json:"useCase" jsonschema:"required,free-text description of what the integration should do"`
}

type recommendOperationInput struct {
	ERP     string `json:"erp" jsonschema:"required,the ERP key or alias"`
	UseCase string `json:"useCase" jsonschema:"required,free-text description of the desired action"`
}

type validateRequestInput struct {
	ERP                string `json:"erp" jsonschema:"required,the ERP key or alias"`
	Operation          string `json:"operation" jsonschema:"required,operation method name (e.g. exportVendor)"`
	RequestPayloadJSON string `json:"requestPayloadJson" jsonschema:"required,the request payload as a JSON object string"`
}

type diagnoseErrorInput struct {
	ERP          string `json:"erp" jsonschema:"required,the ERP key or alias"`
	ErrorMessage string `json:"errorMessage" jsonschema:"required,the error message to diagnose, verbatim or fragmentary"`
}

type healthCheckInput struct{}

type healthCheckOutput struct {
	Status         string   `json:"status"`
	RegisteredERPs []string `json:"registeredErps"`
	Version        string   `json:"version"`
	Timestamp      string   `json:"timestamp"`
}

type listERPsInput struct{}

type erpInfoOutput struct {
	Key          string   `json:"key"`
	Aliases      []string `json:"aliases"`
	Capabilities []string `json:"capabilities"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
}

type listERPsOutput struct {
	ERPs  []erpInfoOutput `json:"erps"`
	Count int             `json:"count"`
}

type checkKnowledgeFilesInput struct {
	ERP string `json:"erp" jsonschema:"required,the ERP key or alias"`
}

type checkKnowledgeFilesOutput struct {
	TotalFiles int               `json:"totalFiles"`
	Files      []models.FileInfo `json:"files"`
	Summary    string            `json:"summary"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolQueryKnowledge,
		Description: "Search an ERP's operations and flows by free text. Returns matches plus the global constants, validation rules, and code examples reference tables.",
	}, s.handleQueryKnowledge)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolListOperations,
		Description: "List every integration operation of an ERP with its category and owning flow.",
	}, s.handleListOperations)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolListFlows,
		Description: "List every integration flow of an ERP with the operations that use it.",
	}, s.handleListFlows)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolGetFlowDetails,
		Description: "Get one flow's anatomy, constants, validation rules, code snippets, and critical files. Flow names are case- and separator-insensitive.",
	}, s.handleGetFlowDetails)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolRecommendFlow,
		Description: "Recommend the integration flow that fits a free-text use case, with confidence and alternatives.",
	}, s.handleRecommendFlow)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolRecommendOperation,
		Description: "Recommend the operation that fits a free-text use case, with confidence and up to two alternatives.",
	}, s.handleRecommendOperation)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolValidateRequest,
		Description: "Validate a request payload against the operation's flow rules: required fields, length limits, and numeric ceilings, each cited to its source.",
	}, s.handleValidateRequest)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolDiagnoseError,
		Description: "Match an error message against the ERP's error catalog and explain its category, causes, solutions, and prevention.",
	}, s.handleDiagnoseError)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolHealthCheck,
		Description: "Report server status, registered ERPs, and version.",
	}, s.handleHealthCheck)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolListERPs,
		Description: "List registered ERPs with their aliases and capabilities.",
	}, s.handleListERPs)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        core.ToolCheckKnowledgeFiles,
		Description: "List the knowledge documents of an ERP with existence and size, for auditing the embedded knowledge set.",
	}, s.handleCheckKnowledgeFiles)
}

// --- Tool handlers ---

func (s *Server) handleQueryKnowledge(_ context.Context, _ *gomcp.CallToolRequest, input queryKnowledgeInput) (*gomcp.CallToolResult, *models.QueryResult, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolQueryKnowledge, input.ERP, start, true)
		return errorResult(err.Error()), nil, nil
	}

	query, ok := facade.Query()
	if !ok {
		s.record(core.ToolQueryKnowledge, facade.Info().Key, start, false)
		return nil, s.unsupportedQuery(facade), nil
	}

	out := query.Query(input.Query, input.Scope)
	s.record(core.ToolQueryKnowledge, facade.Info().Key, start, false)
	return nil, out, nil
}

func (s *Server) handleListOperations(_ context.Context, _ *gomcp.CallToolRequest, input listOperationsInput) (*gomcp.CallToolResult, listOperationsOutput, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolListOperations, input.ERP, start, true)
		return errorResult(err.Error()), listOperationsOutput{}, nil
	}
	key := facade.Info().Key

	flows, hasFlows := facade.Flows()
	ops := facade.Knowledge().AllOperations()

	out := listOperationsOutput{
		Operations: make([]models.OperationSummary, 0, len(ops)),
		Count:      len(ops),
		Summary:    fmt.Sprintf("%s exposes %d operations.", key, len(ops)),
		NextActions: []models.NextAction{
			core.NextAction(key, core.ToolQueryKnowledge, "Search operations and flows by keyword", map[string]string{"query": "*"}),
			core.NextAction(key, core.ToolListFlows, "Browse all integration flows of this ERP", nil),
		},
	}
	for _, op := range ops {
		summary := models.OperationSummary{
			Method:   op.Method,
			Summary:  op.Summary,
			Category: op.Category,
		}
		if hasFlows {
			if flow, ok := flows.FlowForOperation(op.Method); ok {
				summary.Flow = flow
			}
		}
		out.Operations = append(out.Operations, summary)
	}

	s.record(core.ToolListOperations, key, start, false)
	return nil, out, nil
}

func (s *Server) handleListFlows(_ context.Context, _ *gomcp.CallToolRequest, input listFlowsInput) (*gomcp.CallToolResult, listFlowsOutput, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolListFlows, input.ERP, start, true)
		return errorResult(err.Error()), listFlowsOutput{}, nil
	}
	key := facade.Info().Key

	out := listFlowsOutput{
		Flows: []models.FlowSummary{},
		NextActions: []models.NextAction{
			core.NextAction(key, core.ToolListOperations, "Browse all operations of this ERP", nil),
		},
	}

	flows, ok := facade.Flows()
	if !ok {
		out.Summary = fmt.Sprintf("Unsupported: %s has no flows catalogued.", key)
		s.record(core.ToolListFlows, key, start, false)
		return nil, out, nil
	}

	for _, flow := range flows.AllFlows() {
		out.Flows = append(out.Flows, models.FlowSummary{
			Name:             flow.Name,
			Description:      flow.Description,
			UsedByOperations: flow.UsedByOperations,
		})
	}
	out.Count = len(out.Flows)
	out.Summary = fmt.Sprintf("%s exposes %d integration flows.", key, out.Count)

	s.record(core.ToolListFlows, key, start, false)
	return nil, out, nil
}

func (s *Server) handleGetFlowDetails(_ context.Context, _ *gomcp.CallToolRequest, input getFlowDetailsInput) (*gomcp.CallToolResult, getFlowDetailsOutput, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolGetFlowDetails, input.ERP, start, true)
		return errorResult(err.Error()), getFlowDetailsOutput{}, nil
	}
	key := facade.Info().Key

	notFound := func(summary string) getFlowDetailsOutput {
		return getFlowDetailsOutput{
			Summary: summary,
			NextActions: []models.NextAction{
				core.NextAction(key, core.ToolListFlows, "List the flows this ERP does have", nil),
			},
		}
	}

	flows, ok := facade.Flows()
	if !ok {
		s.record(core.ToolGetFlowDetails, key, start, false)
		return nil, notFound(fmt.Sprintf("Unsupported: %s has no flows catalogued.", key)), nil
	}

	flow, ok := flows.Flow(input.FlowName)
	if !ok {
		s.record(core.ToolGetFlowDetails, key, start, false)
		return nil, notFound(fmt.Sprintf("No flow named %q is known to %s.", input.FlowName, key)), nil
	}

	out := getFlowDetailsOutput{
		Found:            true,
		Name:             flow.Name,
		Description:      flow.Description,
		Anatomy:          flow.Anatomy,
		Constants:        flow.Constants,
		ValidationRules:  flow.ValidationRules,
		CodeSnippets:     flow.CodeSnippets,
		CriticalFiles:    flow.CriticalFiles,
		UsedByOperations: flow.UsedByOperations,
		Summary:          fmt.Sprintf("%s: %s", flow.Name, flow.Description),
		NextActions: []models.NextAction{
			core.NextAction(key, core.ToolValidateRequest, "Validate a draft payload against this flow's rules", nil),
			core.NextAction(key, core.ToolListFlows, "Browse all integration flows of this ERP", nil),
		},
	}

	s.record(core.ToolGetFlowDetails, key, start, false)
	return nil, out, nil
}

func (s *Server) handleRecommendFlow(_ context.Context, _ *gomcp.CallToolRequest, input recommendFlowInput) (*gomcp.CallToolResult, *models.FlowRecommendation, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolRecommendFlow, input.ERP, start, true)
		return errorResult(err.Error()), nil, nil
	}
	key := facade.Info().Key

	rec, ok := facade.Recommender()
	if !ok {
		s.record(core.ToolRecommendFlow, key, start, false)
		return nil, &models.FlowRecommendation{
			Confidence:       models.ConfidenceLow,
			Summary:          fmt.Sprintf("Unsupported: %s has no recommendation service registered.", key),
			Reasoning:        "this ERP's knowledge set does not include flow recommendations",
			AlternativeFlows: []models.AlternativeFlow{},
			NextActions:      s.unsupportedActions(key),
		}, nil
	}

	out := rec.RecommendFlow(input.UseCase)
	s.record(core.ToolRecommendFlow, key, start, false)
	return nil, out, nil
}

func (s *Server) handleRecommendOperation(_ context.Context, _ *gomcp.CallToolRequest, input recommendOperationInput) (*gomcp.CallToolResult, *models.OperationRecommendation, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolRecommendOperation, input.ERP, start, true)
		return errorResult(err.Error()), nil, nil
	}
	key := facade.Info().Key

	rec, ok := facade.Recommender()
	if !ok {
		s.record(core.ToolRecommendOperation, key, start, false)
		return nil, &models.OperationRecommendation{
			Confidence:  models.ConfidenceLow,
			Summary:     fmt.Sprintf("Unsupported: %s has no recommendation service registered.", key),
			Reasoning:   "this ERP's knowledge set does not include operation recommendations",
			NextActions: s.unsupportedActions(key),
		}, nil
	}

	out := rec.RecommendOperation(input.UseCase)
	s.record(core.ToolRecommendOperation, key, start, false)
	return nil, out, nil
}

func (s *Server) handleValidateRequest(_ context.Context, _ *gomcp.CallToolRequest, input validateRequestInput) (*gomcp.CallToolResult, *models.ValidationResult, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolValidateRequest, input.ERP, start, true)
		return errorResult(err.Error()), nil, nil
	}
	key := facade.Info().Key

	validator, ok := facade.Validator()
	if !ok {
		s.record(core.ToolValidateRequest, key, start, false)
		return nil, &models.ValidationResult{
			Operation: input.Operation,
			Errors: []models.ValidationError{{
				Rule:    "unsupported",
				Message: fmt.Sprintf("%s has no validation service registered", key),
			}},
			Summary:     fmt.Sprintf("Unsupported: %s cannot validate request payloads.", key),
			NextActions: s.unsupportedActions(key),
		}, nil
	}

	out := validator.Validate(input.Operation, input.RequestPayloadJSON)
	s.record(core.ToolValidateRequest, key, start, false)
	return nil, out, nil
}

func (s *Server) handleDiagnoseError(_ context.Context, _ *gomcp.CallToolRequest, input diagnoseErrorInput) (*gomcp.CallToolResult, *models.ErrorDiagnostic, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolDiagnoseError, input.ERP, start, true)
		return errorResult(err.Error()), nil, nil
	}
	key := facade.Info().Key

	diagnoser, ok := facade.Diagnoser()
	if !ok {
		s.record(core.ToolDiagnoseError, key, start, false)
		return nil, &models.ErrorDiagnostic{
			ErrorCategory:  core.CategoryUnsupported,
			Summary:        fmt.Sprintf("Unsupported: %s has no diagnostic service registered.", key),
			PossibleCauses: []string{"this ERP's knowledge set does not include an error catalog"},
			NextActions:    s.unsupportedActions(key),
		}, nil
	}

	out := diagnoser.Diagnose(input.ErrorMessage)
	s.record(core.ToolDiagnoseError, key, start, false)
	return nil, out, nil
}

func (s *Server) handleHealthCheck(_ context.Context, _ *gomcp.CallToolRequest, _ healthCheckInput) (*gomcp.CallToolResult, healthCheckOutput, error) {
	return nil, healthCheckOutput{
		Status:         "ok",
		RegisteredERPs: s.registry.Keys(),
		Version:        s.version,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Server) handleListERPs(_ context.Context, _ *gomcp.CallToolRequest, _ listERPsInput) (*gomcp.CallToolResult, listERPsOutput, error) {
	infos := s.registry.Infos()
	out := listERPsOutput{
		ERPs:  make([]erpInfoOutput, 0, len(infos)),
		Count: len(infos),
	}
	for _, info := range infos {
		facade, err := s.registry.Resolve(info.Key)
		if err != nil {
			continue
		}
		aliases := info.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		out.ERPs = append(out.ERPs, erpInfoOutput{
			Key:          info.Key,
			Aliases:      aliases,
			Capabilities: facade.Capabilities(),
			Version:      info.Version,
			Description:  info.Description,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCheckKnowledgeFiles(_ context.Context, _ *gomcp.CallToolRequest, input checkKnowledgeFilesInput) (*gomcp.CallToolResult, checkKnowledgeFilesOutput, error) {
	start := time.Now()

	facade, err := s.registry.Resolve(input.ERP)
	if err != nil {
		s.record(core.ToolCheckKnowledgeFiles, input.ERP, start, true)
		return errorResult(err.Error()), checkKnowledgeFilesOutput{}, nil
	}
	key := facade.Info().Key

	files := facade.Knowledge().FileInventory()
	missing := 0
	for _, f := range files {
		if !f.OK {
			missing++
		}
	}

	out := checkKnowledgeFilesOutput{
		TotalFiles: len(files),
		Files:      files,
		Summary:    fmt.Sprintf("%s declares %d knowledge files; %d missing.", key, len(files), missing),
	}

	s.record(core.ToolCheckKnowledgeFiles, key, start, false)
	return nil, out, nil
}

// --- Helpers ---

func (s *Server) unsupportedQuery(facade *erp.Facade) *models.QueryResult {
	key := facade.Info().Key
	return &models.QueryResult{
		Summary:           fmt.Sprintf("Unsupported: %s has no query service registered.", key),
		MatchedOperations: []models.OperationSummary{},
		RelevantFlows:     []models.FlowSummary{},
		NextActions:       s.unsupportedActions(key),
	}
}

// unsupportedActions steers callers of an unsupported capability toward
// what the ERP can do.
func (s *Server) unsupportedActions(key string) []models.NextAction {
	return []models.NextAction{
		core.NextAction(key, core.ToolListOperations, "Browse the operations this ERP does expose", nil),
		core.NextAction(key, core.ToolListERPs, "See which ERPs support which capabilities", nil),
	}
}

func (s *Server) record(tool, erpKey string, start time.Time, isError bool) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(observability.ToolInvocation{
		Time:       start.UTC(),
		Tool:       tool,
		ERP:        erpKey,
		DurationMS: time.Since(start).Milliseconds(),
		IsError:    isError,
	})
	if err != nil {
		s.logger.Warn("recording audit entry", "tool", tool, "err", err)
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
