// Package models contains the shared data types for the ERP knowledge
// server: knowledge documents, flow documents, boundary result shapes,
// and server configuration.
package models

// Category is a named grouping of operations (e.g. "vendors").
// OperationCount is the count declared by the knowledge set; it is only
// compared against the actually loaded operations as a soft consistency
// check, never enforced.
type Category struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	OperationCount int    `json:"operationCount,omitempty"`
}

// FieldSpec describes the contract for a single request field.
type FieldSpec struct {
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	MaxLength   int     `json:"maxLength,omitempty"`
	Max         float64 `json:"max,omitempty"`
	Example     string  `json:"example,omitempty"`
}

// Operation is a single named integration action with its field contract.
// Method is the unique key across the whole knowledge set.
type Operation struct {
	Method         string               `json:"method"`
	Code           string               `json:"code,omitempty"`
	Summary        string               `json:"summary"`
	Category       string               `json:"category"`
	RequiredFields map[string]FieldSpec `json:"requiredFields,omitempty"`
	OptionalFields map[string]FieldSpec `json:"optionalFields,omitempty"`
}

// EnumValue is one member of an ERP enumeration.
type EnumValue struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Enum is a named ERP enumeration (e.g. vendor status codes).
type Enum struct {
	Name    string      `json:"name"`
	Summary string      `json:"summary,omitempty"`
	Values  []EnumValue `json:"values"`
}

// CodeRef cites a location in the connector source code.
type CodeRef struct {
	File  string `json:"file"`
	Lines string `json:"lines,omitempty"`
}

// CatalogError is one known error with its classification and provenance.
type CatalogError struct {
	Message   string   `json:"message"`
	Field     string   `json:"field,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Type      string   `json:"type,omitempty"`
	Location  *CodeRef `json:"location,omitempty"`
}

// OperationErrors holds the known errors for one operation, split by kind.
type OperationErrors struct {
	Validation    []CatalogError `json:"validation,omitempty"`
	BusinessLogic []CatalogError `json:"businessLogic,omitempty"`
}

// ErrorCatalog is the global collection of known errors for one ERP.
type ErrorCatalog struct {
	Authentication []CatalogError             `json:"authentication,omitempty"`
	Operations     map[string]OperationErrors `json:"operations,omitempty"`
	API            []CatalogError             `json:"api,omitempty"`
}

// FileInfo describes one knowledge document as listed by the manifest.
type FileInfo struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"sizeBytes"`
	OK        bool   `json:"ok"`
}
