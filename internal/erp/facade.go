package erp

import (
	"erpmcp/internal/core"
	"erpmcp/internal/storage"
)

// Capability names reported by list_erps.
const (
	CapKnowledge      = "knowledge"
	CapFlows          = "flows"
	CapQuery          = "query"
	CapValidation     = "validation"
	CapDiagnostics    = "diagnostics"
	CapRecommendation = "recommendation"
)

// Facade is the per-request view of one ERP's services. It is a cheap
// value constructed fresh by every Resolve call over the immutable
// registration, so nothing mutable is shared across concurrent requests.
type Facade struct {
	info   Info
	bundle ServiceBundle
}

// Info returns the identity of the resolved ERP.
func (f *Facade) Info() Info {
	return f.info
}

// Knowledge returns the ERP's knowledge store. Always present.
func (f *Facade) Knowledge() storage.KnowledgeStore {
	return f.bundle.Knowledge
}

// Flows returns the flow store, or false when this ERP has no flows.
func (f *Facade) Flows() (storage.FlowStore, bool) {
	return f.bundle.Flows, f.bundle.Flows != nil
}

// Query returns the query service, or false when unsupported.
func (f *Facade) Query() (core.QueryService, bool) {
	return f.bundle.Query, f.bundle.Query != nil
}

// Validator returns the validation service, or false when unsupported.
func (f *Facade) Validator() (core.Validator, bool) {
	return f.bundle.Validator, f.bundle.Validator != nil
}

// Diagnoser returns the diagnostic service, or false when unsupported.
func (f *Facade) Diagnoser() (core.Diagnoser, bool) {
	return f.bundle.Diagnoser, f.bundle.Diagnoser != nil
}

// Recommender returns the recommendation service, or false when
// unsupported.
func (f *Facade) Recommender() (core.Recommender, bool) {
	return f.bundle.Recommender, f.bundle.Recommender != nil
}

// Capabilities derives the capability list from the non-nil bundle
// fields.
func (f *Facade) Capabilities() []string {
	caps := []string{CapKnowledge}
	if f.bundle.Flows != nil {
		caps = append(caps, CapFlows)
	}
	if f.bundle.Query != nil {
		caps = append(caps, CapQuery)
	}
	if f.bundle.Validator != nil {
		caps = append(caps, CapValidation)
	}
	if f.bundle.Diagnoser != nil {
		caps = append(caps, CapDiagnostics)
	}
	if f.bundle.Recommender != nil {
		caps = append(caps, CapRecommendation)
	}
	return caps
}
