package refetch

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Response wraps the raw *http.Response with body interpretation helpers.
// The accessors may be called repeatedly: the first read snapshots the body
// and replaces it with a replayable reader.
type Response struct {
	*http.Response

	// Input is the URL or path the call was issued with.
	Input string
}

func newResponse(input string, resp *http.Response) *Response {
	return &Response{Response: resp, Input: input}
}

// Bytes reads the full body.
func (r *Response) Bytes() ([]byte, error) {
	return snapshotBody(r.Response)
}

// Text reads the full body as a string.
func (r *Response) Text() (string, error) {
	body, err := r.Bytes()
	return string(body), err
}

// JSON decodes the body into dst. Malformed JSON is deliberately swallowed:
// dst is left zero-valued and no error is returned. Read failures still
// propagate.
func (r *Response) JSON(dst any) error {
	body, err := r.Bytes()
	if err != nil {
		return err
	}
	_ = json.Unmarshal(body, dst)
	return nil
}

// Blob returns the body bytes together with the response content type.
func (r *Response) Blob() ([]byte, string, error) {
	body, err := r.Bytes()
	return body, r.Header.Get("Content-Type"), err
}

// FormData parses the body as form data, handling both urlencoded and
// multipart payloads.
func (r *Response) FormData() (url.Values, error) {
	body, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return parseMultipartForm(body, params["boundary"])
	}
	return url.ParseQuery(string(body))
}

func parseMultipartForm(body []byte, boundary string) (url.Values, error) {
	values := url.Values{}
	reader := multipart.NewReader(strings.NewReader(string(body)), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		values.Add(part.FormName(), string(data))
	}
}
