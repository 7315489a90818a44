package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
)

// gatewayCall is one recorded invocation on spyGateway
type gatewayCall struct {
	Method     string
	Collection string
	ID         int64
	SubID      int64
	Action     string
	Fields     map[string]interface{}
	Filters    hudu.Filters
}

// spyGateway records every call and answers from canned responses keyed by
// method or "method:collection".
type spyGateway struct {
	mu    sync.Mutex
	calls []gatewayCall

	objects map[string]json.RawMessage
	lists   map[string][]json.RawMessage
	errs    map[string]error
}

func newSpyGateway() *spyGateway {
	return &spyGateway{
		objects: map[string]json.RawMessage{},
		lists:   map[string][]json.RawMessage{},
		errs:    map[string]error{},
	}
}

func (s *spyGateway) record(c gatewayCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	if err, ok := s.errs[c.Method+":"+c.Collection]; ok {
		return err
	}
	return s.errs[c.Method]
}

func (s *spyGateway) object(c gatewayCall) (json.RawMessage, error) {
	if err := s.record(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := s.objects[c.Method+":"+c.Collection]; ok {
		return raw, nil
	}
	if raw, ok := s.objects[c.Method]; ok {
		return raw, nil
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%d}`, c.ID)), nil
}

func (s *spyGateway) list(c gatewayCall) ([]json.RawMessage, error) {
	if err := s.record(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if items, ok := s.lists[c.Method+":"+c.Collection]; ok {
		return items, nil
	}
	return s.lists[c.Method], nil
}

func (s *spyGateway) Calls() []gatewayCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gatewayCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *spyGateway) List(_ context.Context, collection string, filters hudu.Filters) ([]json.RawMessage, error) {
	return s.list(gatewayCall{Method: "List", Collection: collection, Filters: filters})
}

func (s *spyGateway) Get(_ context.Context, collection string, id int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Get", Collection: collection, ID: id})
}

func (s *spyGateway) Create(_ context.Context, collection string, fields map[string]interface{}) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Create", Collection: collection, Fields: fields})
}

func (s *spyGateway) Update(_ context.Context, collection string, id int64, fields map[string]interface{}) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Update", Collection: collection, ID: id, Fields: fields})
}

func (s *spyGateway) Delete(_ context.Context, collection string, id int64) error {
	return s.record(gatewayCall{Method: "Delete", Collection: collection, ID: id})
}

func (s *spyGateway) Archive(_ context.Context, collection string, id int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Archive", Collection: collection, ID: id})
}

func (s *spyGateway) Unarchive(_ context.Context, collection string, id int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Unarchive", Collection: collection, ID: id})
}

func (s *spyGateway) Action(_ context.Context, collection string, id int64, action string) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "Action", Collection: collection, ID: id, Action: action})
}

func (s *spyGateway) APIInfo(_ context.Context) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "APIInfo"})
}

func (s *spyGateway) DeleteActivityLogs(_ context.Context, datetime string, deleteUnassigned *bool) error {
	filters := hudu.Filters{"datetime": datetime}
	if deleteUnassigned != nil {
		filters["delete_unassigned_logs"] = *deleteUnassigned
	}
	return s.record(gatewayCall{Method: "DeleteActivityLogs", Filters: filters})
}

func (s *spyGateway) CardJump(_ context.Context, filters hudu.Filters) ([]json.RawMessage, error) {
	return s.list(gatewayCall{Method: "CardJump", Filters: filters})
}

func (s *spyGateway) CardLookup(_ context.Context, filters hudu.Filters) ([]json.RawMessage, error) {
	return s.list(gatewayCall{Method: "CardLookup", Filters: filters})
}

func (s *spyGateway) CompanyJump(_ context.Context, filters hudu.Filters) ([]json.RawMessage, error) {
	return s.list(gatewayCall{Method: "CompanyJump", Filters: filters})
}

func (s *spyGateway) CompanyAssets(_ context.Context, companyID int64, filters hudu.Filters) ([]json.RawMessage, error) {
	return s.list(gatewayCall{Method: "CompanyAssets", ID: companyID, Filters: filters})
}

func (s *spyGateway) CompanyAsset(_ context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "CompanyAsset", ID: companyID, SubID: assetID})
}

func (s *spyGateway) ArchiveCompanyAsset(_ context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "ArchiveCompanyAsset", ID: companyID, SubID: assetID})
}

func (s *spyGateway) UnarchiveCompanyAsset(_ context.Context, companyID, assetID int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "UnarchiveCompanyAsset", ID: companyID, SubID: assetID})
}

func (s *spyGateway) MoveAssetLayout(_ context.Context, companyID, assetID, layoutID int64) (json.RawMessage, error) {
	return s.object(gatewayCall{Method: "MoveAssetLayout", ID: companyID, SubID: assetID, Fields: map[string]interface{}{"asset_layout_id": layoutID}})
}
