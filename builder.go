package refetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// buildRequest turns an input and a merged config into a dispatchable
// request. It runs the BuildRequest hooks in order, resolves the target URL,
// merges search params, selects and encodes the body, and injects jar
// cookies. The encoded body bytes are returned separately so retry attempts
// and the memo fingerprint can reuse them.
func (c *Client) buildRequest(ctx context.Context, input string, cfg *Config) (*http.Request, []byte, error) {
	for _, hook := range cfg.BuildRequest {
		if hook == nil {
			continue
		}
		if err := hook(ctx, cfg); err != nil {
			return nil, nil, err
		}
	}

	target, err := resolveURL(input, cfg)
	if err != nil {
		return nil, nil, err
	}

	body, contentType, err := encodeBody(cfg)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(cfg.Method), target, reader)
	if err != nil {
		return nil, nil, err
	}

	for name, value := range cfg.Headers {
		req.Header.Set(name, value)
	}
	if contentType != "" && cfg.Headers["content-type"] == "" {
		req.Header.Set("Content-Type", contentType)
	}

	if cfg.Cookies {
		if err := c.jar.Inject(ctx, req.URL.Hostname(), req.Header); err != nil {
			return nil, nil, err
		}
	}

	return req, body, nil
}

// resolveURL combines the input with the configured prefix and search params.
// Inputs beginning with '#', '&' or '?' are appended to the prefix verbatim;
// otherwise exactly one slash joins prefix and input.
func resolveURL(input string, cfg *Config) (string, error) {
	target := input
	if cfg.PrefixURL != "" {
		switch {
		case input == "":
			target = cfg.PrefixURL
		case strings.HasPrefix(input, "#"), strings.HasPrefix(input, "&"), strings.HasPrefix(input, "?"):
			target = cfg.PrefixURL + input
		default:
			target = strings.TrimSuffix(cfg.PrefixURL, "/") + "/" + strings.TrimPrefix(input, "/")
		}
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if len(cfg.SearchParams) > 0 {
		query := populateQuery(u.Query(), cfg.SearchParams)
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// encodeBody picks the body source in priority order JSON, Form, Multipart
// and returns the encoded bytes with their content type. The content type is
// only applied when the config has not set one explicitly.
func encodeBody(cfg *Config) ([]byte, string, error) {
	switch {
	case cfg.JSON != nil:
		body, err := json.Marshal(cfg.JSON)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	case cfg.Form != nil:
		form := populateForm(url.Values{}, cfg.Form)
		return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
	case cfg.Multipart != nil:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := populateMultipart(w, cfg.Multipart); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}
	return nil, "", nil
}

// endpointLabel renders host+path for metric and log labels.
func endpointLabel(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}
	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)
	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}
	return builder.String()
}
