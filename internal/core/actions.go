package core

import (
	"fmt"
	"net/url"
	"sort"

	"erpmcp/pkg/models"
)

// Tool names of the MCP surface. Next-action links reference these, and
// the server registers tools under exactly these names, so every link a
// service emits resolves to a callable tool.
const (
	ToolQueryKnowledge      = "query_knowledge"
	ToolListOperations      = "list_operations"
	ToolListFlows           = "list_flows"
	ToolGetFlowDetails      = "get_flow_details"
	ToolRecommendFlow       = "recommend_flow"
	ToolRecommendOperation  = "recommend_operation"
	ToolValidateRequest     = "validate_request"
	ToolDiagnoseError       = "diagnose_error"
	ToolHealthCheck         = "health_check"
	ToolListERPs            = "list_erps"
	ToolCheckKnowledgeFiles = "check_knowledge_files"
)

// ToolNames returns every tool name in the surface.
func ToolNames() []string {
	return []string{
		ToolQueryKnowledge,
		ToolListOperations,
		ToolListFlows,
		ToolGetFlowDetails,
		ToolRecommendFlow,
		ToolRecommendOperation,
		ToolValidateRequest,
		ToolDiagnoseError,
		ToolHealthCheck,
		ToolListERPs,
		ToolCheckKnowledgeFiles,
	}
}

// NextAction builds a follow-up link for a tool scoped to one ERP. args
// become query parameters of the erpmcp:// URI, sorted for stable output.
func NextAction(erp, tool, description string, args map[string]string) models.NextAction {
	uri := fmt.Sprintf("erpmcp://%s/%s", url.PathEscape(erp), tool)
	if len(args) > 0 {
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := url.Values{}
		for _, k := range keys {
			values.Set(k, args[k])
		}
		uri += "?" + values.Encode()
	}
	return models.NextAction{Tool: tool, Description: description, URI: uri}
}

// browseActions is the fixed discovery pair appended to most results.
func browseActions(erp string) []models.NextAction {
	return []models.NextAction{
		NextAction(erp, ToolListOperations, "Browse all operations of this ERP", nil),
		NextAction(erp, ToolListFlows, "Browse all integration flows of this ERP", nil),
	}
}
