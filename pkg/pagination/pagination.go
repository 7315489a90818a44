// Package pagination holds the page bounds shared by every list-style tool
// and normalizes the page and page_size arguments before they reach the API.
package pagination

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/multierr"
)

const (
	// DefaultPage is the first page number
	DefaultPage = 1

	// DefaultPageSize is advertised as the default results per page
	DefaultPageSize = 25

	// MaxPageSize is the largest page the API is asked for
	MaxPageSize = 100

	PageKey     = "page"
	PageSizeKey = "page_size"
)

// ErrInvalidPage is returned for a page argument that is not a number
var ErrInvalidPage = errors.New("page arguments must be numbers")

// Normalize clamps the page and page_size entries of args in place. Absent
// keys stay absent so the API applies its own defaults. Values that are not
// numbers are reported and left untouched.
func Normalize(args map[string]interface{}) error {
	var errs error
	if v, ok := args[PageKey]; ok && v != nil {
		page, err := number(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", err, PageKey))
		} else if page < DefaultPage {
			args[PageKey] = json.Number(strconv.Itoa(DefaultPage))
		}
	}
	if v, ok := args[PageSizeKey]; ok && v != nil {
		size, err := number(v)
		switch {
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", err, PageSizeKey))
		case size < 1:
			args[PageSizeKey] = json.Number("1")
		case size > MaxPageSize:
			args[PageSizeKey] = json.Number(strconv.Itoa(MaxPageSize))
		}
	}
	return errs
}

func number(v interface{}) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, ErrInvalidPage
		}
		return f, nil
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(f) {
			return 0, ErrInvalidPage
		}
		return f, nil
	default:
		return 0, ErrInvalidPage
	}
}
