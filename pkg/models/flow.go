package models

// FlowStep is one ordered step of a flow's anatomy.
type FlowStep struct {
	Step       int    `json:"step"`
	Title      string `json:"title"`
	Details    string `json:"details,omitempty"`
	Validation string `json:"validation,omitempty"`
	Mapping    string `json:"mapping,omitempty"`
}

// FlowConstant is a named constant defined by a flow, with the source
// location it was extracted from. Validation errors cite these as rule
// provenance.
type FlowConstant struct {
	Value   string `json:"value"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// CriticalFile points at a connector source file a developer should read
// when working on this flow.
type CriticalFile struct {
	Path        string   `json:"path"`
	Lines       string   `json:"lines,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
	KeyPatterns []string `json:"keyPatterns,omitempty"`
}

// Flow is a named, reusable integration pattern. Name is the unique key;
// lookups treat spaces, hyphens, and underscores as equivalent separators
// and are case-insensitive.
type Flow struct {
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	Anatomy          []FlowStep              `json:"anatomy,omitempty"`
	Constants        map[string]FlowConstant `json:"constants,omitempty"`
	ValidationRules  []string                `json:"validationRules,omitempty"`
	CodeSnippets     map[string]string       `json:"codeSnippets,omitempty"`
	CriticalFiles    []CriticalFile          `json:"criticalFiles,omitempty"`
	UsedByOperations []string                `json:"usedByOperations,omitempty"`
}
