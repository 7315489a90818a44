package tools

import (
	"encoding/json"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/pagination"
)

func prop(typ, description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: typ, Description: description}
}

func stringProp(description string) *jsonschema.Schema { return prop("string", description) }
func numberProp(description string) *jsonschema.Schema { return prop("number", description) }
func booleanProp(description string) *jsonschema.Schema { return prop("boolean", description) }

// Properties shared by most tools
func idProp() *jsonschema.Schema {
	return numberProp("ID for get/update/delete/archive operations")
}

func companyIDProp() *jsonschema.Schema { return numberProp("Company ID") }
func folderIDProp() *jsonschema.Schema { return numberProp("Folder ID") }
func nameProp() *jsonschema.Schema { return stringProp("Name") }
func descriptionProp() *jsonschema.Schema { return stringProp("Description") }

func enumSchema(description string, values []string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Description: description, Enum: enum}
}

func actionSchema(actions []string) *jsonschema.Schema {
	return enumSchema("Action to perform", actions)
}

func fieldsSchema(properties map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Data for create/update operations",
		Properties:  properties,
	}
}

func objectSchema(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if properties == nil {
		properties = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{Type: "object", Properties: properties, Required: required}
}

func pageProp() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "number",
		Description: "Page number",
		Minimum:     bound(pagination.DefaultPage),
		Default:     json.RawMessage(strconv.Itoa(pagination.DefaultPage)),
	}
}

func pageSizeProp() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "number",
		Description: "Results per page",
		Minimum:     bound(1),
		Maximum:     bound(pagination.MaxPageSize),
		Default:     json.RawMessage(strconv.Itoa(pagination.DefaultPageSize)),
	}
}

// querySchema is the list/filter shape shared by every .query tool
func querySchema(filters map[string]*jsonschema.Schema) *jsonschema.Schema {
	properties := map[string]*jsonschema.Schema{
		"search":    stringProp("Search query text"),
		"name":      stringProp("Filter by name"),
		pagination.PageKey:     pageProp(),
		pagination.PageSizeKey: pageSizeProp(),
	}
	for key, schema := range filters {
		properties[key] = schema
	}
	return objectSchema(properties)
}

func bound(v float64) *float64 {
	return &v
}
