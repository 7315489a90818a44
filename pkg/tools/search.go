package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

// searchTarget is one content type covered by the search tool
type searchTarget struct {
	kind       string
	collection string
	// companyScoped targets accept the company_id filter
	companyScoped bool
}

var searchTargets = []searchTarget{
	{kind: "articles", collection: hudu.Articles, companyScoped: true},
	{kind: "assets", collection: hudu.Assets, companyScoped: true},
	{kind: "passwords", collection: hudu.AssetPasswords, companyScoped: true},
	{kind: "companies", collection: hudu.Companies},
}

func searchKinds() []string {
	kinds := make([]string, len(searchTargets))
	for i, t := range searchTargets {
		kinds[i] = t.kind
	}
	return kinds
}

func (t searchTarget) filters(query string, companyID interface{}) hudu.Filters {
	filters := hudu.Filters{"search": query}
	if t.companyScoped && companyID != nil {
		filters["company_id"] = companyID
	}
	return filters
}

func searchTool(logger logging.Logger) Definition {
	s := &searcher{logger: logger.WithFields(logging.String("component", "search"))}
	return Definition{
		Name:        "search",
		Description: "Global search across all Hudu content types",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"query":      stringProp("Search query text"),
			"type":       enumSchema("Specific content type to search", searchKinds()),
			"company_id": numberProp("Filter results by company ID"),
		}, "query"),
		Execute: s.execute,
	}
}

type searcher struct {
	logger logging.Logger
}

func (s *searcher) execute(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return protocol.NewToolError("Search query is required")
	}
	companyID := args["company_id"]

	var (
		data interface{}
		err  error
	)

	if kind, ok := args["type"]; ok && kind != nil && kind != "" {
		target, found := lookupSearchTarget(kind)
		if !found {
			return protocol.NewToolErrorf("Unsupported search type: %v", kind)
		}
		data, err = listed(gw.List(ctx, target.collection, target.filters(query, companyID)))
	} else {
		data, err = s.searchAll(ctx, gw, query, companyID)
	}

	if err != nil {
		return protocol.NewToolErrorf("Search operation failed: %s", err.Error())
	}
	return protocol.NewToolSuccess(data, fmt.Sprintf("Search completed for query: %q", query))
}

func lookupSearchTarget(kind interface{}) (searchTarget, bool) {
	for _, t := range searchTargets {
		if t.kind == kind {
			return t, true
		}
	}
	return searchTarget{}, false
}

// searchAll queries every content type concurrently. A type the API key may
// not read is logged and reported empty; any other failure fails the search.
func (s *searcher) searchAll(ctx context.Context, gw Gateway, query string, companyID interface{}) (map[string][]json.RawMessage, error) {
	var mu sync.Mutex
	results := make(map[string][]json.RawMessage, len(searchTargets))

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range searchTargets {
		g.Go(func() error {
			items, err := gw.List(gctx, target.collection, target.filters(query, companyID))
			if err != nil {
				if !hudu.IsUnauthorized(err) {
					return fmt.Errorf("%s: %w", target.kind, err)
				}
				s.logger.WithContext(ctx).WithError(err).Warn("Skipping search type the API key cannot read",
					logging.String("type", target.kind),
				)
				items = nil
			}
			if items == nil {
				items = []json.RawMessage{}
			}

			mu.Lock()
			results[target.kind] = items
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
