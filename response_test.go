package refetch

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawResponse(body string, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestResponseBytesIsRepeatable(t *testing.T) {
	resp := newResponse("/things", rawResponse("payload", "text/plain"))

	first, err := resp.Bytes()
	require.NoError(t, err)
	second, err := resp.Bytes()
	require.NoError(t, err)

	assert.Equal(t, []byte("payload"), first)
	assert.Equal(t, first, second)

	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "payload", text)
}

func TestResponseJSON(t *testing.T) {
	t.Run("well-formed body decodes", func(t *testing.T) {
		resp := newResponse("/things", rawResponse(`{"id":42}`, "application/json"))
		var dst struct {
			ID int `json:"id"`
		}
		require.NoError(t, resp.JSON(&dst))
		assert.Equal(t, 42, dst.ID)
	})

	t.Run("malformed body is swallowed", func(t *testing.T) {
		resp := newResponse("/things", rawResponse(`{broken`, "application/json"))
		var dst struct {
			ID int `json:"id"`
		}
		require.NoError(t, resp.JSON(&dst))
		assert.Zero(t, dst.ID)
	})
}

func TestResponseBlob(t *testing.T) {
	resp := newResponse("/img", rawResponse("\x89PNG", "image/png"))

	body, contentType, err := resp.Blob()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), body)
	assert.Equal(t, "image/png", contentType)
}

func TestResponseFormDataURLEncoded(t *testing.T) {
	resp := newResponse("/form", rawResponse("a=1&b=two&b=three", "application/x-www-form-urlencoded"))

	values, err := resp.FormData()
	require.NoError(t, err)
	assert.Equal(t, "1", values.Get("a"))
	assert.Equal(t, []string{"two", "three"}, values["b"])
}

func TestResponseFormDataMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "refetch"))
	require.NoError(t, w.WriteField("lang", "go"))
	require.NoError(t, w.Close())

	resp := newResponse("/form", rawResponse(buf.String(), w.FormDataContentType()))

	values, err := resp.FormData()
	require.NoError(t, err)
	assert.Equal(t, "refetch", values.Get("name"))
	assert.Equal(t, "go", values.Get("lang"))
}

func TestResponseExposesInput(t *testing.T) {
	resp := newResponse("/v1/items", rawResponse("", ""))
	assert.Equal(t, "/v1/items", resp.Input)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
