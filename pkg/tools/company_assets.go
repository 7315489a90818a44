package tools

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

var companyAssetActions = []string{"list", "get", "archive", "unarchive", "move_layout"}

func companyAssetsTool() Definition {
	return Definition{
		Name:        "company_assets",
		Description: "List and manage assets scoped to a single Hudu company",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"action":          enumSchema("Action to perform", companyAssetActions),
			"company_id":      numberProp("Company ID (required)"),
			"asset_id":        numberProp("Asset ID (required except for list)"),
			"asset_layout_id": numberProp("Asset layout ID: filter for list, target for move_layout (required)"),
			"archived":        booleanProp("Include archived assets (for list)"),
			"name":            stringProp("Filter by name (for list)"),
			"search":          stringProp("Search query text (for list)"),
			"page":            pageProp(),
			"page_size":       pageSizeProp(),
		}, "action", "company_id"),
		Execute: executeCompanyAssets,
	}
}

func executeCompanyAssets(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	action := stringArg(args, "action")
	if !slices.Contains(companyAssetActions, action) {
		return protocol.NewToolErrorf("Unknown action: %s", describeAction(args["action"]))
	}

	companyID, ok := idArg(args, "company_id")
	if !ok {
		return protocol.NewToolErrorf("Company ID is required for %s operation", action)
	}

	if action == "list" {
		items, err := gw.CompanyAssets(ctx, companyID, pick(args, "archived", "name", "asset_layout_id", "search", "page", "page_size"))
		if err != nil {
			return companyAssetsFailed(err)
		}
		return protocol.NewToolSuccess(rawList(items), "")
	}

	assetID, ok := idArg(args, "asset_id")
	if !ok {
		return protocol.NewToolErrorf("Asset ID is required for %s operation", action)
	}

	var (
		asset   json.RawMessage
		message string
		err     error
	)

	switch action {
	case "get":
		asset, err = gw.CompanyAsset(ctx, companyID, assetID)
	case "archive":
		_, err = gw.ArchiveCompanyAsset(ctx, companyID, assetID)
		message = "Asset archived successfully"
	case "unarchive":
		_, err = gw.UnarchiveCompanyAsset(ctx, companyID, assetID)
		message = "Asset unarchived successfully"
	case "move_layout":
		layoutID, ok := idArg(args, "asset_layout_id")
		if !ok {
			return protocol.NewToolError("Asset layout ID is required for move_layout operation")
		}
		asset, err = gw.MoveAssetLayout(ctx, companyID, assetID, layoutID)
		message = "Asset moved to new layout successfully"
	}

	if err != nil {
		return companyAssetsFailed(err)
	}
	return protocol.NewToolSuccess(rawData(asset), message)
}

func companyAssetsFailed(err error) protocol.ToolResult {
	return protocol.NewToolErrorf("Company assets operation failed: %s", err.Error())
}
