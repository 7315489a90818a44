package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

func navigationTool() Definition {
	return Definition{
		Name:        "navigation",
		Description: "Navigation operations for jumping to specific Hudu locations",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"action":     enumSchema("Navigation action to perform", []string{"card_jump", "card_lookup", "company_jump"}),
			"name":       stringProp("Name for searching/jumping"),
			"company_id": numberProp("Company ID for filtering"),
		}, "action"),
		Execute: executeNavigation,
	}
}

func executeNavigation(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	action := stringArg(args, "action")
	name := stringArg(args, "name")

	switch action {
	case "card_jump", "card_lookup", "company_jump":
	default:
		return protocol.NewToolErrorf("Unknown navigation action: %s", describeAction(args["action"]))
	}

	if name == "" {
		return protocol.NewToolErrorf("Name is required for %s operation", action)
	}

	var (
		data    interface{}
		message string
		err     error
	)

	switch action {
	case "card_jump":
		data, err = listed(gw.CardJump(ctx, pick(args, "name", "company_id")))
		message = fmt.Sprintf("Jumped to card %q successfully", name)
	case "card_lookup":
		data, err = listed(gw.CardLookup(ctx, pick(args, "name", "company_id")))
		message = "Card lookup completed successfully"
	case "company_jump":
		data, err = listed(gw.CompanyJump(ctx, pick(args, "name")))
		message = fmt.Sprintf("Jumped to company %q successfully", name)
	}

	if err != nil {
		return protocol.NewToolErrorf("Navigation operation failed: %s", err.Error())
	}
	return protocol.NewToolSuccess(data, message)
}
