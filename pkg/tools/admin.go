package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

var adminActions = []string{
	"get_api_info",
	"get_activity_logs",
	"delete_activity_logs",
	"get_exports",
	"get_s3_exports",
	"get_expirations",
}

func adminTool() Definition {
	return Definition{
		Name:        "admin",
		Description: "Administrative operations for Hudu instance management",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"action":                 enumSchema("Administrative action to perform", adminActions),
			"user_id":                numberProp("Filter by user ID (for activity logs)"),
			"resource_type":          stringProp("Filter by resource type (for activity logs)"),
			"start_date":             stringProp("Filter by start date ISO format (for activity logs)"),
			"datetime":               stringProp("Delete logs before this ISO datetime"),
			"delete_unassigned_logs": booleanProp("Whether to delete unassigned logs"),
			"company_id":             numberProp("Filter by company ID (for expirations)"),
			"expiration_type":        stringProp("Filter by expiration type"),
			"page":                   pageProp(),
			"page_size":              pageSizeProp(),
		}, "action"),
		Execute: executeAdmin,
	}
}

func executeAdmin(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	action := stringArg(args, "action")

	var (
		data    interface{}
		message string
		err     error
	)

	switch action {
	case "get_api_info":
		var info json.RawMessage
		info, err = gw.APIInfo(ctx)
		data, message = rawData(info), "API information retrieved successfully"

	case "get_activity_logs":
		data, err = listed(gw.List(ctx, hudu.ActivityLogs, pick(args, "user_id", "resource_type", "start_date", "page", "page_size")))
		message = "Activity logs retrieved successfully"

	case "delete_activity_logs":
		datetime := stringArg(args, "datetime")
		if datetime == "" {
			return protocol.NewToolError("Datetime is required for delete_activity_logs operation")
		}
		deleteUnassigned := boolArg(args, "delete_unassigned_logs")
		if deleteUnassigned == nil {
			no := false
			deleteUnassigned = &no
		}
		err = gw.DeleteActivityLogs(ctx, datetime, deleteUnassigned)
		message = "Activity logs deleted successfully"

	case "get_exports":
		data, err = listed(gw.List(ctx, hudu.Exports, pick(args, "page", "page_size")))
		message = "Exports retrieved successfully"

	case "get_s3_exports":
		data, err = listed(gw.List(ctx, hudu.S3Exports, pick(args, "page", "page_size")))
		message = "S3 exports retrieved successfully"

	case "get_expirations":
		data, err = listed(gw.List(ctx, hudu.Expirations, pick(args, "company_id", "expiration_type", "page", "page_size")))
		message = "Expirations retrieved successfully"

	default:
		return protocol.NewToolErrorf("Unknown admin action: %s", describeAction(args["action"]))
	}

	if err != nil {
		return protocol.NewToolErrorf("Admin operation failed: %s", err.Error())
	}
	return protocol.NewToolSuccess(data, message)
}

func listed(items []json.RawMessage, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return rawList(items), nil
}
