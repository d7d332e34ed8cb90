package core

import (
	"sort"
	"strings"

	"erpmcp/internal/storage"
	"erpmcp/pkg/models"
)

// fakeKnowledge is an in-memory KnowledgeStore for service tests.
type fakeKnowledge struct {
	erp      string
	cats     []models.Category
	opsByCat map[string][]models.Operation
	enums    []models.Enum
	catalog  models.ErrorCatalog
	files    []models.FileInfo
}

var _ storage.KnowledgeStore = (*fakeKnowledge)(nil)

func (f *fakeKnowledge) ERP() string                       { return f.erp }
func (f *fakeKnowledge) Categories() []models.Category     { return f.cats }
func (f *fakeKnowledge) Enums() []models.Enum              { return f.enums }
func (f *fakeKnowledge) ErrorCatalog() models.ErrorCatalog { return f.catalog }
func (f *fakeKnowledge) FileInventory() []models.FileInfo  { return f.files }

func (f *fakeKnowledge) OperationsByCategory(name string) []models.Operation {
	for cat, ops := range f.opsByCat {
		if strings.EqualFold(cat, name) {
			return ops
		}
	}
	return nil
}

func (f *fakeKnowledge) FindOperation(method string) (models.Operation, bool) {
	for _, op := range f.AllOperations() {
		if strings.EqualFold(op.Method, method) {
			return op, true
		}
	}
	return models.Operation{}, false
}

func (f *fakeKnowledge) AllOperations() []models.Operation {
	names := make([]string, 0, len(f.opsByCat))
	for cat := range f.opsByCat {
		names = append(names, cat)
	}
	sort.Strings(names)

	var all []models.Operation
	for _, cat := range names {
		all = append(all, f.opsByCat[cat]...)
	}
	return all
}

func (f *fakeKnowledge) OperationErrors(method string) []models.CatalogError {
	for op, errs := range f.catalog.Operations {
		if strings.EqualFold(op, method) {
			merged := append([]models.CatalogError{}, errs.Validation...)
			return append(merged, errs.BusinessLogic...)
		}
	}
	return nil
}

// fakeFlows is an in-memory FlowStore for service tests.
type fakeFlows struct {
	flows []models.Flow
}

var _ storage.FlowStore = (*fakeFlows)(nil)

func (f *fakeFlows) Flow(name string) (models.Flow, bool) {
	normalized := storage.NormalizeFlowName(name)
	for _, flow := range f.flows {
		if strings.EqualFold(flow.Name, name) || strings.EqualFold(flow.Name, normalized) {
			return flow, true
		}
	}
	return models.Flow{}, false
}

func (f *fakeFlows) FlowNames() []string {
	names := make([]string, 0, len(f.flows))
	for _, flow := range f.flows {
		names = append(names, flow.Name)
	}
	return names
}

func (f *fakeFlows) AllFlows() []models.Flow { return f.flows }

func (f *fakeFlows) FlowForOperation(method string) (string, bool) {
	for _, flow := range f.flows {
		for _, op := range flow.UsedByOperations {
			if strings.EqualFold(op, method) {
				return flow.Name, true
			}
		}
	}
	return "", false
}

// vendorKnowledge builds the miniature connector knowledge set shared by
// the service tests.
func vendorKnowledge() *fakeKnowledge {
	return &fakeKnowledge{
		erp: "acumatica",
		cats: []models.Category{
			{Name: "vendors", Description: "Vendor master data", OperationCount: 3},
			{Name: "bills", Description: "AP bills", OperationCount: 1},
		},
		opsByCat: map[string][]models.Operation{
			"vendors": {
				{
					Method:   "importVendors",
					Summary:  "Import vendors with pagination",
					Category: "vendors",
					OptionalFields: map[string]models.FieldSpec{
						"pageSize": {Type: "number", Max: 2000},
					},
				},
				{
					Method:   "exportVendor",
					Summary:  "Export one vendor to the ERP",
					Category: "vendors",
					RequiredFields: map[string]models.FieldSpec{
						"vendorId":     {Type: "string", MaxLength: 15, Example: "V000321"},
						"vendorName":   {Type: "string", MaxLength: 60},
						"externalLink": {Type: "string", MaxLength: 250},
					},
				},
				{
					Method:   "getVendorDetails",
					Summary:  "Retrieve one vendor by ID",
					Category: "vendors",
					RequiredFields: map[string]models.FieldSpec{
						"vendorId": {Type: "string", MaxLength: 15, Example: "V000321"},
					},
				},
			},
			"bills": {
				{
					Method:   "exportBill",
					Summary:  "Export one AP bill to the ERP",
					Category: "bills",
					RequiredFields: map[string]models.FieldSpec{
						"refNbr":   {Type: "string", MaxLength: 15},
						"vendorId": {Type: "string", MaxLength: 15},
						"amount":   {Type: "number"},
					},
				},
			},
		},
		catalog: models.ErrorCatalog{
			Authentication: []models.CatalogError{
				{Message: "Invalid credentials. Check username and password.", Type: "auth"},
			},
			Operations: map[string]models.OperationErrors{
				"exportVendor": {
					Validation: []models.CatalogError{
						{Message: "Vendor ID is required.", Field: "vendorId", Type: "missing_field"},
						{
							Message:  "Vendor ID exceeds the maximum length of 15 characters.",
							Field:    "vendorId",
							Type:     "length",
							Location: &models.CodeRef{File: "src/Export/VendorMapper.cs", Lines: "87-91"},
						},
					},
					BusinessLogic: []models.CatalogError{
						{Message: "Duplicate vendor ID. A vendor with this ID already exists.", Field: "vendorId"},
					},
				},
				"importVendors": {
					Validation: []models.CatalogError{
						{Message: "Page size exceeds the 2000 row limit.", Field: "pageSize"},
					},
				},
			},
		},
	}
}

func vendorFlows() *fakeFlows {
	return &fakeFlows{flows: []models.Flow{
		{
			Name:        "vendor_export_flow",
			Description: "Maps and exports a single vendor with length-checked fields.",
			Constants: map[string]models.FlowConstant{
				"VENDOR_ID_MAX_LENGTH":     {Value: "15", File: "src/Export/VendorMapper.cs", Line: 87},
				"VENDOR_NAME_MAX_LENGTH":   {Value: "60", File: "src/Export/VendorMapper.cs", Line: 92},
				"EXTERNAL_LINK_MAX_LENGTH": {Value: "250", File: "src/Export/VendorMapper.cs", Line: 104},
			},
			ValidationRules:  []string{"vendorId must not exceed 15 characters"},
			UsedByOperations: []string{"exportVendor"},
		},
		{
			Name:        "standard_import_flow",
			Description: "Paginated import of ERP records.",
			Constants: map[string]models.FlowConstant{
				"MAX_PAGE_SIZE":     {Value: "2000", File: "src/Import/PaginatedReader.cs", Line: 42},
				"DEFAULT_PAGE_SIZE": {Value: "500", File: "src/Import/PaginatedReader.cs", Line: 38},
			},
			CodeSnippets:     map[string]string{"pagination_loop": "while (hasMore) { ... }"},
			UsedByOperations: []string{"importVendors", "getVendorDetails"},
		},
		{
			Name:             "bill_export_flow",
			Description:      "Maps and exports a single AP bill.",
			UsedByOperations: []string{"exportBill"},
		},
	}}
}
