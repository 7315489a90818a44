package tools

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
)

func TestAdminTool(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		call    gatewayCall
		message string
	}{
		{
			name:    "api info",
			args:    `{"action":"get_api_info"}`,
			call:    gatewayCall{Method: "APIInfo"},
			message: "API information retrieved successfully",
		},
		{
			name: "activity logs",
			args: `{"action":"get_activity_logs","user_id":3,"resource_type":"Asset","page":2,"company_id":9}`,
			call: gatewayCall{Method: "List", Collection: hudu.ActivityLogs, Filters: hudu.Filters{
				"user_id":       json.Number("3"),
				"resource_type": "Asset",
				"page":          json.Number("2"),
			}},
			message: "Activity logs retrieved successfully",
		},
		{
			name:    "delete activity logs defaults unassigned to false",
			args:    `{"action":"delete_activity_logs","datetime":"2024-01-01T00:00:00Z"}`,
			call:    gatewayCall{Method: "DeleteActivityLogs", Filters: hudu.Filters{"datetime": "2024-01-01T00:00:00Z", "delete_unassigned_logs": false}},
			message: "Activity logs deleted successfully",
		},
		{
			name:    "delete activity logs with unassigned",
			args:    `{"action":"delete_activity_logs","datetime":"2024-01-01","delete_unassigned_logs":true}`,
			call:    gatewayCall{Method: "DeleteActivityLogs", Filters: hudu.Filters{"datetime": "2024-01-01", "delete_unassigned_logs": true}},
			message: "Activity logs deleted successfully",
		},
		{
			name:    "exports",
			args:    `{"action":"get_exports","page_size":10}`,
			call:    gatewayCall{Method: "List", Collection: hudu.Exports, Filters: hudu.Filters{"page_size": json.Number("10")}},
			message: "Exports retrieved successfully",
		},
		{
			name:    "s3 exports",
			args:    `{"action":"get_s3_exports"}`,
			call:    gatewayCall{Method: "List", Collection: hudu.S3Exports, Filters: hudu.Filters{}},
			message: "S3 exports retrieved successfully",
		},
		{
			name:    "expirations",
			args:    `{"action":"get_expirations","company_id":4,"expiration_type":"ssl_certificate"}`,
			call:    gatewayCall{Method: "List", Collection: hudu.Expirations, Filters: hudu.Filters{"company_id": json.Number("4"), "expiration_type": "ssl_certificate"}},
			message: "Expirations retrieved successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newSpyGateway()
			reg := newTestRegistry(t, gw)

			result := call(t, reg, "admin", tt.args)
			require.True(t, result.Success, result.Error)
			assert.Equal(t, tt.message, result.Message)
			if diff := cmp.Diff([]gatewayCall{tt.call}, gw.Calls()); diff != "" {
				t.Errorf("gateway calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdminToolFailures(t *testing.T) {
	gw := newSpyGateway()
	reg := newTestRegistry(t, gw)

	result := call(t, reg, "admin", `{"action":"delete_activity_logs"}`)
	assert.Equal(t, "Datetime is required for delete_activity_logs operation", result.Error)
	assert.Empty(t, gw.Calls())

	gw.errs["APIInfo"] = mcperrors.UpstreamAPIError("GET", "/api_info", 502, "")
	result = call(t, reg, "admin", `{"action":"get_api_info"}`)
	assert.Equal(t, "Admin operation failed: Bad Gateway (status 502)", result.Error)
}

func TestNavigationTool(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		call    gatewayCall
		message string
	}{
		{
			name:    "card jump",
			args:    `{"action":"card_jump","name":"Core Switch","company_id":2}`,
			call:    gatewayCall{Method: "CardJump", Filters: hudu.Filters{"name": "Core Switch", "company_id": json.Number("2")}},
			message: `Jumped to card "Core Switch" successfully`,
		},
		{
			name:    "card lookup",
			args:    `{"action":"card_lookup","name":"Core"}`,
			call:    gatewayCall{Method: "CardLookup", Filters: hudu.Filters{"name": "Core"}},
			message: "Card lookup completed successfully",
		},
		{
			name:    "company jump ignores company_id",
			args:    `{"action":"company_jump","name":"Acme","company_id":2}`,
			call:    gatewayCall{Method: "CompanyJump", Filters: hudu.Filters{"name": "Acme"}},
			message: `Jumped to company "Acme" successfully`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newSpyGateway()
			reg := newTestRegistry(t, gw)

			result := call(t, reg, "navigation", tt.args)
			require.True(t, result.Success, result.Error)
			assert.Equal(t, tt.message, result.Message)
			if diff := cmp.Diff([]gatewayCall{tt.call}, gw.Calls()); diff != "" {
				t.Errorf("gateway calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNavigationRequiresName(t *testing.T) {
	gw := newSpyGateway()
	reg := newTestRegistry(t, gw)

	for _, action := range []string{"card_jump", "card_lookup", "company_jump"} {
		result := call(t, reg, "navigation", `{"action":"`+action+`"}`)
		assert.Equal(t, "Name is required for "+action+" operation", result.Error)
	}
	assert.Empty(t, gw.Calls())

	gw.errs["CardJump"] = mcperrors.UpstreamNotFound("GET", "/cards/jump", "card not found")
	result := call(t, reg, "navigation", `{"action":"card_jump","name":"x"}`)
	assert.Equal(t, "Navigation operation failed: card not found (status 404)", result.Error)
}

func TestSearchRequiresQuery(t *testing.T) {
	gw := newSpyGateway()
	reg := newTestRegistry(t, gw)

	for _, args := range []string{`{}`, `{"query":"   "}`, `{"query":42}`} {
		result := call(t, reg, "search", args)
		assert.Equal(t, "Search query is required", result.Error)
	}
	assert.Empty(t, gw.Calls())
}

func TestSearchSingleType(t *testing.T) {
	gw := newSpyGateway()
	reg := newTestRegistry(t, gw)

	result := call(t, reg, "search", `{"query":"  vpn  ","type":"passwords","company_id":3}`)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, `Search completed for query: "vpn"`, result.Message)

	want := []gatewayCall{{
		Method:     "List",
		Collection: hudu.AssetPasswords,
		Filters:    hudu.Filters{"search": "vpn", "company_id": json.Number("3")},
	}}
	if diff := cmp.Diff(want, gw.Calls()); diff != "" {
		t.Errorf("gateway calls mismatch (-want +got):\n%s", diff)
	}

	result = call(t, reg, "search", `{"query":"vpn","type":"websites"}`)
	assert.Equal(t, "Unsupported search type: websites", result.Error)
}

func TestSearchAllTypes(t *testing.T) {
	gw := newSpyGateway()
	gw.lists["List:"+hudu.Articles] = []json.RawMessage{json.RawMessage(`{"id":1}`)}
	reg := newTestRegistry(t, gw)

	result := call(t, reg, "search", `{"query":"vpn","company_id":3}`)
	require.True(t, result.Success, result.Error)

	data, err := json.Marshal(result.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"articles":[{"id":1}],"assets":[],"passwords":[],"companies":[]}`, string(data))

	want := []gatewayCall{
		{Method: "List", Collection: hudu.Articles, Filters: hudu.Filters{"search": "vpn", "company_id": json.Number("3")}},
		{Method: "List", Collection: hudu.Assets, Filters: hudu.Filters{"search": "vpn", "company_id": json.Number("3")}},
		{Method: "List", Collection: hudu.AssetPasswords, Filters: hudu.Filters{"search": "vpn", "company_id": json.Number("3")}},
		{Method: "List", Collection: hudu.Companies, Filters: hudu.Filters{"search": "vpn"}},
	}
	sortCalls := cmpopts.SortSlices(func(a, b gatewayCall) bool { return a.Collection < b.Collection })
	if diff := cmp.Diff(want, gw.Calls(), sortCalls); diff != "" {
		t.Errorf("gateway calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchSkipsUnauthorizedTypes(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(&logs, &logging.TextFormatter{DisableColors: true, DisableTimestamp: true})

	gw := newSpyGateway()
	gw.errs["List:"+hudu.AssetPasswords] = mcperrors.UpstreamUnauthorized("GET", "/asset_passwords", 403, "")
	gw.lists["List:"+hudu.Companies] = []json.RawMessage{json.RawMessage(`{"id":8}`)}
	reg := newTestRegistry(t, gw, WithLogger(logger))

	result := call(t, reg, "search", `{"query":"vpn"}`)
	require.True(t, result.Success, result.Error)

	data, err := json.Marshal(result.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"articles":[],"assets":[],"passwords":[],"companies":[{"id":8}]}`, string(data))
	assert.Contains(t, logs.String(), "[WARN]")
	assert.Contains(t, logs.String(), "type=passwords")
}

func TestSearchFailsFastOnOtherErrors(t *testing.T) {
	gw := newSpyGateway()
	gw.errs["List:"+hudu.Assets] = mcperrors.UpstreamAPIError("GET", "/assets", 500, "")
	reg := newTestRegistry(t, gw)

	result := call(t, reg, "search", `{"query":"vpn"}`)
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "Search operation failed: assets: Internal Server Error (status 500)", result.Error)
}

func TestCompanyAssetsTool(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		call    gatewayCall
		message string
		hasData bool
	}{
		{
			name:    "list",
			args:    `{"action":"list","company_id":5,"archived":true,"page":2}`,
			call:    gatewayCall{Method: "CompanyAssets", ID: 5, Filters: hudu.Filters{"archived": true, "page": json.Number("2")}},
			hasData: true,
		},
		{
			name: "list with filters",
			args: `{"action":"list","company_id":5,"name":"fw","asset_layout_id":3,"search":"edge","asset_id":9}`,
			call: gatewayCall{Method: "CompanyAssets", ID: 5, Filters: hudu.Filters{
				"name":            "fw",
				"asset_layout_id": json.Number("3"),
				"search":          "edge",
			}},
			hasData: true,
		},
		{
			name:    "get",
			args:    `{"action":"get","company_id":5,"asset_id":11}`,
			call:    gatewayCall{Method: "CompanyAsset", ID: 5, SubID: 11},
			hasData: true,
		},
		{
			name:    "archive",
			args:    `{"action":"archive","company_id":5,"asset_id":11}`,
			call:    gatewayCall{Method: "ArchiveCompanyAsset", ID: 5, SubID: 11},
			message: "Asset archived successfully",
		},
		{
			name:    "unarchive",
			args:    `{"action":"unarchive","company_id":5,"asset_id":11}`,
			call:    gatewayCall{Method: "UnarchiveCompanyAsset", ID: 5, SubID: 11},
			message: "Asset unarchived successfully",
		},
		{
			name:    "move layout",
			args:    `{"action":"move_layout","company_id":5,"asset_id":11,"asset_layout_id":3}`,
			call:    gatewayCall{Method: "MoveAssetLayout", ID: 5, SubID: 11, Fields: map[string]interface{}{"asset_layout_id": int64(3)}},
			message: "Asset moved to new layout successfully",
			hasData: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newSpyGateway()
			reg := newTestRegistry(t, gw)

			result := call(t, reg, "company_assets", tt.args)
			require.True(t, result.Success, result.Error)
			assert.Equal(t, tt.message, result.Message)
			if tt.hasData {
				assert.NotNil(t, result.Data)
			} else {
				assert.Nil(t, result.Data)
			}
			if diff := cmp.Diff([]gatewayCall{tt.call}, gw.Calls()); diff != "" {
				t.Errorf("gateway calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompanyAssetsValidation(t *testing.T) {
	gw := newSpyGateway()
	reg := newTestRegistry(t, gw)

	result := call(t, reg, "company_assets", `{"action":"list"}`)
	assert.Equal(t, "Company ID is required for list operation", result.Error)

	result = call(t, reg, "company_assets", `{"action":"get","company_id":5}`)
	assert.Equal(t, "Asset ID is required for get operation", result.Error)

	result = call(t, reg, "company_assets", `{"action":"move_layout","company_id":5,"asset_id":1}`)
	assert.Equal(t, "Asset layout ID is required for move_layout operation", result.Error)

	assert.Empty(t, gw.Calls())

	gw.errs["CompanyAsset"] = mcperrors.UpstreamNotFound("GET", "/companies/5/assets/1", "")
	result = call(t, reg, "company_assets", `{"action":"get","company_id":5,"asset_id":1}`)
	assert.Equal(t, "Company assets operation failed: Not Found (status 404)", result.Error)
}
