package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

// Resource URI schemes. res:// is accepted as an alias of hudu://.
const (
	ResourceScheme      = "hudu://"
	ResourceSchemeAlias = "res://"

	listMember = "list"
	cardKind   = "card"
)

// ResourceGateway is the subset of the Hudu client used to read resources
type ResourceGateway interface {
	List(ctx context.Context, collection string, filters hudu.Filters) ([]json.RawMessage, error)
	Get(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	CardLookup(ctx context.Context, filters hudu.Filters) ([]json.RawMessage, error)
}

var _ ResourceGateway = (*hudu.Client)(nil)

type resourceKind struct {
	kind        string
	collection  string
	name        string
	description string
	listOnly    bool
}

var resourceKinds = []resourceKind{
	{kind: "article", collection: hudu.Articles, name: "Hudu Articles", description: "List of all knowledge base articles"},
	{kind: "asset", collection: hudu.Assets, name: "Hudu Assets", description: "List of all IT assets"},
	{kind: "password", collection: hudu.AssetPasswords, name: "Hudu Passwords", description: "List of all password entries"},
	{kind: "company", collection: hudu.Companies, name: "Hudu Companies", description: "List of all companies"},
	{kind: "asset-layout", collection: hudu.AssetLayouts, name: "Hudu Asset Layouts", description: "List of all asset layout templates"},
	{kind: "activity-log", collection: hudu.ActivityLogs, name: "Hudu Activity Logs", description: "List of all activity logs", listOnly: true},
	{kind: "folder", collection: hudu.Folders, name: "Hudu Folders", description: "List of all folders"},
	{kind: "user", collection: hudu.Users, name: "Hudu Users", description: "List of all users"},
	{kind: "procedure", collection: hudu.Procedures, name: "Hudu Procedures", description: "List of all procedures"},
	{kind: "procedure-task", collection: hudu.ProcedureTasks, name: "Hudu Procedure Tasks", description: "List of all procedure tasks"},
	{kind: "network", collection: hudu.Networks, name: "Hudu Networks", description: "List of all networks"},
	{kind: "password-folder", collection: hudu.PasswordFolders, name: "Hudu Password Folders", description: "List of all password folders"},
	{kind: "upload", collection: hudu.Uploads, name: "Hudu Uploads", description: "List of all file uploads"},
	{kind: "website", collection: hudu.Websites, name: "Hudu Websites", description: "List of all monitored websites"},
	{kind: "vlan", collection: hudu.Vlans, name: "Hudu VLANs", description: "List of all VLANs"},
	{kind: "vlan-zone", collection: hudu.VlanZones, name: "Hudu VLAN Zones", description: "List of all VLAN zones"},
	{kind: "ip-address", collection: hudu.IPAddresses, name: "Hudu IP Addresses", description: "List of all IP addresses"},
	{kind: "relation", collection: hudu.Relations, name: "Hudu Relations", description: "List of all object relations"},
	{kind: "list", collection: hudu.Lists, name: "Hudu Lists", description: "List of all custom lists"},
	{kind: "group", collection: hudu.Groups, name: "Hudu Groups", description: "List of all user groups"},
	{kind: "magic-dash", collection: hudu.MagicDash, name: "Hudu Magic Dashes", description: "List of all magic dashboard items"},
	{kind: "matcher", collection: hudu.Matchers, name: "Hudu Matchers", description: "List of all asset matchers"},
	{kind: "expiration", collection: hudu.Expirations, name: "Hudu Expirations", description: "List of all expiration items", listOnly: true},
	{kind: "export", collection: hudu.Exports, name: "Hudu Exports", description: "List of all data exports", listOnly: true},
	{kind: "rack-storage", collection: hudu.RackStorages, name: "Hudu Rack Storage", description: "List of all rack storage containers"},
	{kind: "rack-storage-item", collection: hudu.RackStorageItems, name: "Hudu Rack Storage Items", description: "List of all rack storage items"},
	{kind: "public-photo", collection: hudu.PublicPhotos, name: "Hudu Public Photos", description: "List of all public photos"},
	{kind: cardKind, name: "Hudu Cards", description: "List of all dashboard cards", listOnly: true},
}

// resourceRef is a parsed resource URI. ID is zero for list URIs.
type resourceRef struct {
	Kind string
	ID   int64
}

func (r resourceRef) IsList() bool {
	return r.ID == 0
}

// parseResourceURI splits <scheme><kind>/<list|id>. The kind is returned
// verbatim; matching it against known kinds is the caller's job.
func parseResourceURI(uri string) (resourceRef, bool) {
	rest, ok := strings.CutPrefix(uri, ResourceScheme)
	if !ok {
		if rest, ok = strings.CutPrefix(uri, ResourceSchemeAlias); !ok {
			return resourceRef{}, false
		}
	}

	kind, member, ok := strings.Cut(rest, "/")
	if !ok || kind == "" || member == "" {
		return resourceRef{}, false
	}

	if member == listMember {
		return resourceRef{Kind: kind}, true
	}

	id, err := strconv.ParseInt(member, 10, 64)
	if err != nil || id <= 0 {
		return resourceRef{}, false
	}
	return resourceRef{Kind: kind, ID: id}, true
}

// ResourceProvider exposes Hudu collections as read-only resources
type ResourceProvider struct {
	gateway ResourceGateway
	kinds   map[string]resourceKind
	logger  logging.Logger
}

// NewResourceProvider creates a provider reading through gw
func NewResourceProvider(gw ResourceGateway, logger logging.Logger) *ResourceProvider {
	if logger == nil {
		logger = logging.NewNop()
	}

	kinds := make(map[string]resourceKind, len(resourceKinds))
	for _, k := range resourceKinds {
		kinds[k.kind] = k
	}

	return &ResourceProvider{
		gateway: gw,
		kinds:   kinds,
		logger:  logger.WithFields(logging.String("component", "resources")),
	}
}

// ListResources returns one list descriptor per resource kind
func (p *ResourceProvider) ListResources(_ context.Context) []protocol.Resource {
	resources := make([]protocol.Resource, 0, len(resourceKinds))
	for _, k := range resourceKinds {
		resources = append(resources, protocol.Resource{
			URI:         ResourceScheme + k.kind + "/" + listMember,
			Name:        k.name,
			Description: k.description,
			MimeType:    protocol.MimeTypeJSON,
		})
	}
	return resources
}

// ReadResource fetches the collection or member named by uri and renders it
// as indented JSON. URIs that match no kind, or carry an id for a list-only
// kind, yield an UnknownResource error without calling the gateway.
func (p *ResourceProvider) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	ref, ok := parseResourceURI(uri)
	if !ok {
		return nil, mcperrors.UnknownResource(uri)
	}

	kind, ok := p.kinds[ref.Kind]
	if !ok || (kind.listOnly && !ref.IsList()) {
		return nil, mcperrors.UnknownResource(uri)
	}

	p.logger.WithContext(ctx).Debug("Reading resource",
		logging.String("uri", uri),
		logging.String("kind", kind.kind),
	)

	doc, err := p.fetch(ctx, kind, ref)
	if err != nil {
		return nil, err
	}

	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render resource %s: %w", uri, err)
	}

	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{{
			URI:      uri,
			MimeType: protocol.MimeTypeJSON,
			Text:     string(text),
		}},
	}, nil
}

func (p *ResourceProvider) fetch(ctx context.Context, kind resourceKind, ref resourceRef) (interface{}, error) {
	if !ref.IsList() {
		return p.gateway.Get(ctx, kind.collection, ref.ID)
	}

	var (
		items []json.RawMessage
		err   error
	)
	if kind.kind == cardKind {
		items, err = p.gateway.CardLookup(ctx, nil)
	} else {
		items, err = p.gateway.List(ctx, kind.collection, nil)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
