package hudu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// APIInfo returns the instance's {version, date} document
func (c *Client) APIInfo(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, request{collection: "api_info", method: http.MethodGet, path: "/api_info"})
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// DeleteActivityLogs removes activity logs older than datetime
func (c *Client) DeleteActivityLogs(ctx context.Context, datetime string, deleteUnassigned *bool) error {
	query := url.Values{"datetime": {datetime}}
	if deleteUnassigned != nil {
		query.Set("delete_unassigned_logs", strconv.FormatBool(*deleteUnassigned))
	}

	_, err := c.do(ctx, request{collection: ActivityLogs, method: http.MethodDelete, path: "/activity_logs", query: query})
	return err
}

// CardJump resolves a card by name
func (c *Client) CardJump(ctx context.Context, filters Filters) ([]json.RawMessage, error) {
	return c.listAt(ctx, "cards", "/cards/jump", "cards", filters)
}

// CardLookup searches cards by name
func (c *Client) CardLookup(ctx context.Context, filters Filters) ([]json.RawMessage, error) {
	return c.listAt(ctx, "cards", "/cards/lookup", "cards", filters)
}

// CompanyJump resolves a company by name
func (c *Client) CompanyJump(ctx context.Context, filters Filters) ([]json.RawMessage, error) {
	return c.listAt(ctx, Companies, "/companies/jump", "companies", filters)
}

// CompanyAssets lists the assets of one company
func (c *Client) CompanyAssets(ctx context.Context, companyID int64, filters Filters) ([]json.RawMessage, error) {
	return c.listAt(ctx, Assets, companyAssetsPath(companyID), "assets", filters)
}

// CompanyAsset returns one asset scoped to its company
func (c *Client) CompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return c.companyAssetCall(ctx, http.MethodGet, companyID, assetID, "", nil)
}

// ArchiveCompanyAsset archives an asset scoped to its company
func (c *Client) ArchiveCompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return c.companyAssetCall(ctx, http.MethodPut, companyID, assetID, "/archive", nil)
}

// UnarchiveCompanyAsset restores an archived company asset
func (c *Client) UnarchiveCompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return c.companyAssetCall(ctx, http.MethodPut, companyID, assetID, "/unarchive", nil)
}

// MoveAssetLayout moves an asset to another asset layout
func (c *Client) MoveAssetLayout(ctx context.Context, companyID, assetID, layoutID int64) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]int64{"asset_layout_id": layoutID})
	if err != nil {
		return nil, err
	}
	return c.companyAssetCall(ctx, http.MethodPut, companyID, assetID, "/move_layout", payload)
}

func (c *Client) companyAssetCall(ctx context.Context, method string, companyID, assetID int64, suffix string, payload []byte) (json.RawMessage, error) {
	path := companyAssetsPath(companyID) + "/" + strconv.FormatInt(assetID, 10) + suffix
	body, err := c.do(ctx, request{collection: Assets, method: method, path: path, body: payload})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, "asset")
}

func (c *Client) listAt(ctx context.Context, label, path, key string, filters Filters) ([]json.RawMessage, error) {
	body, err := c.do(ctx, request{collection: label, method: http.MethodGet, path: path, query: filters.Values()})
	if err != nil {
		return nil, err
	}
	return unwrapList(body, key)
}

func companyAssetsPath(companyID int64) string {
	return "/companies/" + strconv.FormatInt(companyID, 10) + "/assets"
}

// decodeDocument returns a whole response body that is not wrapped in a key
func decodeDocument(body []byte) (json.RawMessage, error) {
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	return json.RawMessage(body), nil
}
