package models

// ManifestKnowledge lists the knowledge documents of one ERP by role.
// Operations maps category name to the file holding that category's
// operation list. Extras holds miscellaneous config blobs (e.g. sandbox
// endpoints) keyed by a short name.
type ManifestKnowledge struct {
	Categories string            `yaml:"categories"`
	Enums      string            `yaml:"enums"`
	Errors     string            `yaml:"errors"`
	Extras     map[string]string `yaml:"extras"`
	Operations map[string]string `yaml:"operations"`
}

// Manifest is the explicit index of an ERP's embedded knowledge set.
// Discovery runs off this file alone; there is no convention-based
// resource scanning.
type Manifest struct {
	ERP         string            `yaml:"erp"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Knowledge   ManifestKnowledge `yaml:"knowledge"`
	Flows       []string          `yaml:"flows"`
}
