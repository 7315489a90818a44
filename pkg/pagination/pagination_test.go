package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want map[string]interface{}
	}{
		{
			name: "absent keys stay absent",
			args: map[string]interface{}{"search": "vpn"},
			want: map[string]interface{}{"search": "vpn"},
		},
		{
			name: "in range values are untouched",
			args: map[string]interface{}{"page": json.Number("3"), "page_size": json.Number("50")},
			want: map[string]interface{}{"page": json.Number("3"), "page_size": json.Number("50")},
		},
		{
			name: "page below one",
			args: map[string]interface{}{"page": json.Number("0")},
			want: map[string]interface{}{"page": json.Number("1")},
		},
		{
			name: "page size above max",
			args: map[string]interface{}{"page_size": float64(250)},
			want: map[string]interface{}{"page_size": json.Number("100")},
		},
		{
			name: "page size below one",
			args: map[string]interface{}{"page_size": -5},
			want: map[string]interface{}{"page_size": json.Number("1")},
		},
		{
			name: "numeric strings",
			args: map[string]interface{}{"page": "2", "page_size": "1000"},
			want: map[string]interface{}{"page": "2", "page_size": json.Number("100")},
		},
		{
			name: "null values are ignored",
			args: map[string]interface{}{"page": nil},
			want: map[string]interface{}{"page": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Normalize(tt.args))
			assert.Equal(t, tt.want, tt.args)
		})
	}
}

func TestNormalizeRejectsNonNumbers(t *testing.T) {
	args := map[string]interface{}{"page": "first", "page_size": true}

	err := Normalize(args)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPage)
	assert.Contains(t, err.Error(), "page")
	assert.Contains(t, err.Error(), "page_size")
	assert.Equal(t, "first", args["page"])
	assert.Equal(t, true, args["page_size"])
}
