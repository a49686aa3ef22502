package refetch

import (
	"bytes"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateQuerySetSemantics(t *testing.T) {
	dst := url.Values{"page": {"1"}}
	populateQuery(dst, map[string]any{
		"page": 2,
		"tags": []string{"a", "b"},
		"skip": nil,
	})

	// set semantics: never duplicate keys
	assert.Equal(t, []string{"2"}, dst["page"])
	// the final slice element wins under set semantics
	assert.Equal(t, []string{"b"}, dst["tags"])
	assert.NotContains(t, dst, "skip")
}

func TestPopulateFormAppendSemantics(t *testing.T) {
	dst := url.Values{}
	populateForm(dst, map[string]any{
		"tag":  []string{"a", "b", "c"},
		"name": "x",
		"nil":  nil,
	})

	assert.Equal(t, []string{"a", "b", "c"}, dst["tag"])
	assert.Equal(t, []string{"x"}, dst["name"])
	assert.NotContains(t, dst, "nil")
}

func TestPopulateMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, populateMultipart(w, map[string]any{
		"tag":  []any{"a", "b"},
		"skip": nil,
		"n":    42,
	}))
	require.NoError(t, w.Close())

	_, params, err := mime.ParseMediaType(w.FormDataContentType())
	require.NoError(t, err)
	form, err := multipart.NewReader(&buf, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, form.Value["tag"])
	assert.Equal(t, []string{"42"}, form.Value["n"])
	assert.NotContains(t, form.Value, "skip")
}

func TestExpandValue(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  []string
		skipV bool
	}{
		{name: "nil skipped", in: nil, skipV: true},
		{name: "typed nil pointer skipped", in: (*string)(nil), skipV: true},
		{name: "string", in: "x", want: []string{"x"}},
		{name: "int", in: 7, want: []string{"7"}},
		{name: "bool", in: true, want: []string{"true"}},
		{name: "float", in: 1.5, want: []string{"1.5"}},
		{name: "bytes as string", in: []byte("raw"), want: []string{"raw"}},
		{name: "string slice", in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "mixed slice", in: []any{"a", 1, nil}, want: []string{"a", "1"}},
		{name: "int slice", in: []int{1, 2}, want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := expandValue(tt.in)
			if tt.skipV {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
