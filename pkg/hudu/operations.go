package hudu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/sjson"
)

// Filters are sent as query parameters. Nil values are skipped.
type Filters map[string]interface{}

// Values renders the filters as URL query values
func (f Filters) Values() url.Values {
	values := url.Values{}
	for key, value := range f {
		if s, ok := formatValue(value); ok {
			values.Set(key, s)
		}
	}
	return values
}

func formatValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// List returns the members of collection matching filters
func (c *Client) List(ctx context.Context, collection string, filters Filters) ([]json.RawMessage, error) {
	col, err := LookupCollection(collection)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodGet, path: col.Path, query: filters.Values()})
	if err != nil {
		return nil, err
	}
	return unwrapList(body, col.Plural)
}

// Get returns one member of collection
func (c *Client) Get(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	col, err := c.member(collection)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodGet, path: memberPath(col, id)})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, col.Singular)
}

// Create posts fields wrapped in the collection's singular key
func (c *Client) Create(ctx context.Context, collection string, fields map[string]interface{}) (json.RawMessage, error) {
	col, err := c.member(collection)
	if err != nil {
		return nil, err
	}

	payload, err := wrap(col.Singular, fields)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodPost, path: col.Path, body: payload})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, col.Singular)
}

// Update puts fields wrapped in the collection's singular key
func (c *Client) Update(ctx context.Context, collection string, id int64, fields map[string]interface{}) (json.RawMessage, error) {
	col, err := c.member(collection)
	if err != nil {
		return nil, err
	}

	payload, err := wrap(col.Singular, fields)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodPut, path: memberPath(col, id), body: payload})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, col.Singular)
}

// Delete removes one member of collection
func (c *Client) Delete(ctx context.Context, collection string, id int64) error {
	col, err := c.member(collection)
	if err != nil {
		return err
	}
	if !col.Deletable {
		return fmt.Errorf("collection %s does not support delete", col.Name)
	}

	_, err = c.do(ctx, request{collection: col.Name, method: http.MethodDelete, path: memberPath(col, id)})
	return err
}

// Archive archives one member of collection
func (c *Client) Archive(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	return c.archiveToggle(ctx, collection, id, "archive")
}

// Unarchive restores an archived member of collection
func (c *Client) Unarchive(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	return c.archiveToggle(ctx, collection, id, "unarchive")
}

func (c *Client) archiveToggle(ctx context.Context, collection string, id int64, verb string) (json.RawMessage, error) {
	col, err := c.member(collection)
	if err != nil {
		return nil, err
	}
	if !col.Archivable {
		return nil, fmt.Errorf("collection %s does not support %s", col.Name, verb)
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodPut, path: memberPath(col, id) + "/" + verb})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, col.Singular)
}

// Action issues a bodiless PUT /{path}/{id}/{action}, such as a procedure kickoff
func (c *Client) Action(ctx context.Context, collection string, id int64, action string) (json.RawMessage, error) {
	col, err := c.member(collection)
	if err != nil {
		return nil, err
	}
	if !col.SupportsAction(action) {
		return nil, fmt.Errorf("collection %s does not support action %s", col.Name, action)
	}

	body, err := c.do(ctx, request{collection: col.Name, method: http.MethodPut, path: memberPath(col, id) + "/" + action})
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, col.Singular)
}

func (c *Client) member(collection string) (Collection, error) {
	col, err := LookupCollection(collection)
	if err != nil {
		return Collection{}, err
	}
	if col.ListOnly {
		return Collection{}, fmt.Errorf("collection %s only supports list", col.Name)
	}
	return col, nil
}

func memberPath(col Collection, id int64) string {
	return col.Path + "/" + strconv.FormatInt(id, 10)
}

// wrap encodes fields as {key: fields}
func wrap(key string, fields map[string]interface{}) ([]byte, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return sjson.SetRawBytes([]byte("{}"), key, raw)
}
