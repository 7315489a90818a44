package tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

// Tool actions
const (
	ActionCreate             = "create"
	ActionGet                = "get"
	ActionUpdate             = "update"
	ActionDelete             = "delete"
	ActionArchive            = "archive"
	ActionUnarchive          = "unarchive"
	ActionKickoff            = hudu.ActionKickoff
	ActionDuplicate          = hudu.ActionDuplicate
	ActionCreateFromTemplate = hudu.ActionCreateFromTemplate
)

var (
	standardActions = []string{ActionCreate, ActionGet, ActionUpdate, ActionDelete, ActionArchive, ActionUnarchive}
	basicActions    = []string{ActionCreate, ActionGet, ActionUpdate, ActionDelete}
	companyActions  = []string{ActionCreate, ActionGet, ActionUpdate, ActionArchive, ActionUnarchive}
	workflowActions = []string{ActionCreate, ActionGet, ActionUpdate, ActionDelete, ActionKickoff, ActionDuplicate, ActionCreateFromTemplate}
)

// past is the verb used in success messages
var past = map[string]string{
	ActionCreate:             "created",
	ActionUpdate:             "updated",
	ActionDelete:             "deleted",
	ActionArchive:            "archived",
	ActionUnarchive:          "unarchived",
	ActionKickoff:            "kicked off",
	ActionDuplicate:          "duplicated",
	ActionCreateFromTemplate: "created from template",
}

// resourceTool describes a CRUD tool and its companion .query tool
type resourceTool struct {
	name        string
	collection  string
	description string
	actions     []string

	// idLabel prefixes "ID is required"; noun prefixes success messages;
	// plural prefixes gateway failures.
	idLabel string
	noun    string
	plural  string

	createRequired []string
	createMessage  string
	idMessages     map[string]string

	fields     map[string]*jsonschema.Schema
	properties map[string]*jsonschema.Schema

	queryDescription string
	queryFilters     map[string]*jsonschema.Schema
}

// resourceTools returns a fresh table; resolved schemas must not be shared
// between registries.
func resourceTools() []resourceTool {
	return []resourceTool{
		{
			name:           "articles",
			collection:     hudu.Articles,
			description:    "Create and manage Hudu knowledge base articles",
			actions:        standardActions,
			idLabel:        "Article",
			noun:           "Article",
			plural:         "Articles",
			createRequired: []string{"name", "content"},
			createMessage:  "Name and content are required for creating articles",
			fields: map[string]*jsonschema.Schema{
				"name":           stringProp("Article name"),
				"content":        stringProp("Article content (HTML/Markdown)"),
				"company_id":     companyIDProp(),
				"folder_id":      folderIDProp(),
				"enable_sharing": booleanProp("Enable public sharing"),
			},
			queryDescription: "Search and filter Hudu articles with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
				"draft":      booleanProp("Filter by draft status"),
			},
		},
		{
			name:           "assets",
			collection:     hudu.Assets,
			description:    "Create and manage Hudu IT assets",
			actions:        standardActions,
			idLabel:        "Asset",
			noun:           "Asset",
			plural:         "Assets",
			createRequired: []string{"name", "company_id", "asset_layout_id"},
			createMessage:  "Name, company_id, and asset_layout_id are required for creating assets",
			fields: map[string]*jsonschema.Schema{
				"name":            stringProp("Asset name"),
				"asset_type":      stringProp("Asset type"),
				"company_id":      numberProp("Company ID (required for create)"),
				"asset_layout_id": numberProp("Asset layout ID (required for create)"),
				"fields": {
					Type:        "array",
					Description: "Asset field values based on layout",
					Items:       &jsonschema.Schema{},
				},
			},
			queryDescription: "Search and filter Hudu assets with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id":      companyIDProp(),
				"asset_layout_id": numberProp("Filter by asset layout ID"),
				"archived":        booleanProp("Include archived assets"),
			},
		},
		{
			name:           "passwords",
			collection:     hudu.AssetPasswords,
			description:    "Create and manage Hudu passwords and credentials",
			actions:        standardActions,
			idLabel:        "Password",
			noun:           "Password",
			plural:         "Passwords",
			createRequired: []string{"name", "password"},
			createMessage:  "Name and password are required for creating passwords",
			fields: map[string]*jsonschema.Schema{
				"name":              stringProp("Password name"),
				"password":          stringProp("Password value"),
				"username":          stringProp("Username"),
				"url":               stringProp("URL"),
				"description":       descriptionProp(),
				"company_id":        companyIDProp(),
				"passwordable_type": stringProp("Passwordable type"),
				"passwordable_id":   numberProp("Passwordable ID"),
			},
			queryDescription: "Search and filter Hudu passwords with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
			},
		},
		{
			name:           "companies",
			collection:     hudu.Companies,
			description:    "Create and manage Hudu companies",
			actions:        companyActions,
			idLabel:        "Company",
			noun:           "Company",
			plural:         "Companies",
			createRequired: []string{"name"},
			createMessage:  "Company name is required for creating companies",
			fields: map[string]*jsonschema.Schema{
				"name":           stringProp("Company name"),
				"nickname":       stringProp("Company nickname"),
				"company_type":   stringProp("Company type"),
				"website":        stringProp("Company website URL"),
				"phone_number":   stringProp("Phone number"),
				"address_line_1": stringProp("Address line 1"),
				"city":           stringProp("City"),
				"state":          stringProp("State"),
				"zip":            stringProp("ZIP code"),
			},
			queryDescription: "Search and filter Hudu companies with pagination",
		},
		{
			name:           "procedures",
			collection:     hudu.Procedures,
			description:    "Create and manage Hudu procedures with workflow operations",
			actions:        workflowActions,
			idLabel:        "Procedure",
			noun:           "Procedure",
			plural:         "Procedures",
			createRequired: []string{"name"},
			createMessage:  "Procedure name is required for creating procedures",
			idMessages: map[string]string{
				ActionCreateFromTemplate: "Template procedure ID is required for create_from_template operation",
			},
			fields: map[string]*jsonschema.Schema{
				"name":        nameProp(),
				"description": descriptionProp(),
				"company_id":  companyIDProp(),
				"folder_id":   folderIDProp(),
			},
			queryDescription: "Search and filter Hudu procedures with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
			},
		},
		{
			name:           "procedure_tasks",
			collection:     hudu.ProcedureTasks,
			description:    "Manage individual tasks within Hudu procedures",
			actions:        basicActions,
			idLabel:        "Task",
			noun:           "Procedure task",
			plural:         "Procedure tasks",
			createRequired: []string{"name", "procedure_id"},
			createMessage:  "Task name and procedure_id are required for creating tasks",
			fields: map[string]*jsonschema.Schema{
				"name":         nameProp(),
				"description":  descriptionProp(),
				"position":     numberProp("Task position in procedure"),
				"completed":    booleanProp("Task completion status"),
				"procedure_id": numberProp("Procedure ID (required for create)"),
			},
			properties: map[string]*jsonschema.Schema{
				"procedure_id": numberProp("Procedure ID for listing tasks"),
			},
			queryDescription: "Search and filter procedure tasks with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"procedure_id": numberProp("Filter by procedure ID"),
			},
		},
		{
			name:           "networks",
			collection:     hudu.Networks,
			description:    "Create and manage Hudu network documentation",
			actions:        basicActions,
			idLabel:        "Network",
			noun:           "Network",
			plural:         "Networks",
			createRequired: []string{"name", "network_type", "network", "mask"},
			createMessage:  "Name, network_type, network, and mask are required for creating networks",
			fields: map[string]*jsonschema.Schema{
				"name":         stringProp("Network name"),
				"network_type": stringProp("Network type (required for create)"),
				"network":      stringProp("Network address (required for create)"),
				"mask":         stringProp("Network mask (required for create)"),
				"gateway":      stringProp("Gateway address"),
				"company_id":   companyIDProp(),
			},
			queryDescription: "Search and filter Hudu networks with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
			},
		},
		{
			name:           "vlans",
			collection:     hudu.Vlans,
			description:    "Create and manage VLANs within networks",
			actions:        basicActions,
			idLabel:        "VLAN",
			noun:           "VLAN",
			plural:         "VLANs",
			createRequired: []string{"name", "vid"},
			createMessage:  "Name and VID are required for creating VLANs",
			fields: map[string]*jsonschema.Schema{
				"name":       stringProp("VLAN name"),
				"vid":        numberProp("VLAN ID number (required for create)"),
				"network_id": numberProp("Network ID"),
			},
			queryDescription: "Search and filter VLANs with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"network_id": numberProp("Filter by network ID"),
			},
		},
		{
			name:           "vlan_zones",
			collection:     hudu.VlanZones,
			description:    "Create and manage VLAN zones",
			actions:        basicActions,
			idLabel:        "VLAN zone",
			noun:           "VLAN zone",
			plural:         "VLAN zones",
			createRequired: []string{"name"},
			createMessage:  "Name is required for creating VLAN zones",
			fields: map[string]*jsonschema.Schema{
				"name":        stringProp("Zone name"),
				"description": descriptionProp(),
				"company_id":  companyIDProp(),
			},
			queryDescription: "Search and filter VLAN zones with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
			},
		},
		{
			name:           "ip_addresses",
			collection:     hudu.IPAddresses,
			description:    "Create and manage IP address assignments",
			actions:        basicActions,
			idLabel:        "IP address",
			noun:           "IP address",
			plural:         "IP addresses",
			createRequired: []string{"address"},
			createMessage:  "Address is required for creating IP addresses",
			fields: map[string]*jsonschema.Schema{
				"address":    stringProp("IP address (required for create)"),
				"hostname":   stringProp("Hostname"),
				"network_id": numberProp("Network ID"),
			},
			queryDescription: "Search and filter IP addresses with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"address":    stringProp("Filter by IP address"),
				"network_id": numberProp("Filter by network ID"),
			},
		},
		{
			name:           "uploads",
			collection:     hudu.Uploads,
			description:    "Create and manage file uploads",
			actions:        basicActions,
			idLabel:        "Upload",
			noun:           "Upload",
			plural:         "Uploads",
			createRequired: []string{"name", "filename"},
			createMessage:  "Name and filename are required for creating uploads",
			fields: map[string]*jsonschema.Schema{
				"name":            stringProp("Upload name"),
				"filename":        stringProp("File name"),
				"content_type":    stringProp("Content type"),
				"uploadable_type": stringProp("Uploadable type"),
				"uploadable_id":   numberProp("Uploadable ID"),
			},
			queryDescription: "Search and filter uploads with pagination",
		},
		{
			name:           "rack_storages",
			collection:     hudu.RackStorages,
			description:    "Create and manage rack storage locations",
			actions:        basicActions,
			idLabel:        "Rack storage",
			noun:           "Rack storage",
			plural:         "Rack storages",
			createRequired: []string{"name"},
			createMessage:  "Name is required for creating rack storages",
			fields: map[string]*jsonschema.Schema{
				"name":       stringProp("Rack storage name"),
				"location":   stringProp("Rack storage location"),
				"company_id": companyIDProp(),
			},
			queryDescription: "Search and filter rack storages with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"company_id": companyIDProp(),
			},
		},
		{
			name:           "rack_storage_items",
			collection:     hudu.RackStorageItems,
			description:    "Create and manage items within rack storage",
			actions:        basicActions,
			idLabel:        "Rack storage item",
			noun:           "Rack storage item",
			plural:         "Rack storage items",
			createRequired: []string{"name", "rack_storage_id"},
			createMessage:  "Name and rack_storage_id are required for creating rack storage items",
			fields: map[string]*jsonschema.Schema{
				"name":            stringProp("Rack storage item name"),
				"position":        stringProp("Position in rack storage"),
				"rack_storage_id": numberProp("Rack storage ID"),
			},
			queryDescription: "Search and filter rack storage items with pagination",
			queryFilters: map[string]*jsonschema.Schema{
				"rack_storage_id": numberProp("Filter by rack storage ID"),
			},
		},
		{
			name:           "public_photos",
			collection:     hudu.PublicPhotos,
			description:    "Create and manage public photos",
			actions:        basicActions,
			idLabel:        "Public photo",
			noun:           "Public photo",
			plural:         "Public photos",
			createRequired: []string{"name"},
			createMessage:  "Name is required for creating public photos",
			fields: map[string]*jsonschema.Schema{
				"name":        stringProp("Photo name"),
				"file_url":    stringProp("Photo file URL"),
				"description": descriptionProp(),
			},
			queryDescription: "Search and filter public photos with pagination",
		},
	}
}

func (rt resourceTool) schema() *jsonschema.Schema {
	properties := map[string]*jsonschema.Schema{
		"action": actionSchema(rt.actions),
		"id":     idProp(),
		"fields": fieldsSchema(rt.fields),
	}
	for key, schema := range rt.properties {
		properties[key] = schema
	}
	return objectSchema(properties, "action")
}

func (rt resourceTool) definition() Definition {
	return Definition{
		Name:        rt.name,
		Description: rt.description,
		Schema:      rt.schema(),
		Execute:     rt.execute,
	}
}

func (rt resourceTool) queryDefinition() Definition {
	return Definition{
		Name:        rt.name + ".query",
		Description: rt.queryDescription,
		Schema:      querySchema(rt.queryFilters),
		Execute:     rt.query,
	}
}

func (rt resourceTool) idRequired(action string) string {
	if msg, ok := rt.idMessages[action]; ok {
		return msg
	}
	return fmt.Sprintf("%s ID is required for %s operation", rt.idLabel, action)
}

func (rt resourceTool) succeeded(action string) string {
	return fmt.Sprintf("%s %s successfully", rt.noun, past[action])
}

func (rt resourceTool) failed(err error) protocol.ToolResult {
	return protocol.NewToolErrorf("%s operation failed: %s", rt.plural, err.Error())
}

// execute validates the action's inputs before touching the gateway
func (rt resourceTool) execute(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	action := stringArg(args, "action")
	if !slices.Contains(rt.actions, action) {
		return protocol.NewToolErrorf("Unknown action: %s", describeAction(args["action"]))
	}

	fields := objectArg(args, "fields")

	if action == ActionCreate {
		if !allPresent(fields, rt.createRequired) {
			return protocol.NewToolError(rt.createMessage)
		}
		created, err := gw.Create(ctx, rt.collection, fields)
		if err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(rawData(created), rt.succeeded(action))
	}

	id, ok := idArg(args, "id")
	if !ok {
		return protocol.NewToolError(rt.idRequired(action))
	}

	switch action {
	case ActionGet:
		record, err := gw.Get(ctx, rt.collection, id)
		if err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(rawData(record), "")

	case ActionUpdate:
		if fields == nil {
			fields = map[string]interface{}{}
		}
		updated, err := gw.Update(ctx, rt.collection, id, fields)
		if err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(rawData(updated), rt.succeeded(action))

	case ActionDelete:
		if err := gw.Delete(ctx, rt.collection, id); err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(nil, rt.succeeded(action))

	case ActionArchive:
		if _, err := gw.Archive(ctx, rt.collection, id); err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(nil, rt.succeeded(action))

	case ActionUnarchive:
		if _, err := gw.Unarchive(ctx, rt.collection, id); err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(nil, rt.succeeded(action))

	default:
		result, err := gw.Action(ctx, rt.collection, id, action)
		if err != nil {
			return rt.failed(err)
		}
		return protocol.NewToolSuccess(rawData(result), rt.succeeded(action))
	}
}

// query lists the collection, passing every argument through as a filter
func (rt resourceTool) query(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	items, err := gw.List(ctx, rt.collection, filtersFrom(args))
	if err != nil {
		return protocol.NewToolErrorf("%s query failed: %s", rt.plural, err.Error())
	}
	return protocol.NewToolSuccess(rawList(items), "")
}

// describeAction renders a missing action the way it reads in messages
func describeAction(v interface{}) string {
	switch a := v.(type) {
	case nil:
		return "undefined"
	case string:
		return a
	default:
		return fmt.Sprint(a)
	}
}
