package github

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/octowire/pkg/errors"
)

// RequestOptions are the per-call inputs to Dispatch. The zero value is a GET.
type RequestOptions struct {
	Method string

	// Params and Query are both added to the URL query string. Params wins
	// when a key appears in both.
	Params map[string]string
	Query  map[string]string

	// Headers override the client defaults for this call.
	Headers map[string]string

	// Body is sent as-is when it is []byte, string or io.Reader, and
	// JSON-encoded otherwise.
	Body any

	// ETag is sent as If-None-Match. A 304 reply fails with NOT_MODIFIED.
	ETag string

	// UseStoredETag sends the ETag remembered for this URL by the client's
	// ETag store when ETag is empty.
	UseStoredETag bool

	// Timeout overrides the client default for this call.
	Timeout time.Duration
}

func (o *RequestOptions) method() string {
	if o == nil || o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

// resolveURL appends Query then Params to rawURL.
func (o *RequestOptions) resolveURL(rawURL string) (string, error) {
	if o == nil || len(o.Params)+len(o.Query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid url %q", rawURL)
	}
	q := u.Query()
	for k, v := range o.Query {
		q.Set(k, v)
	}
	for k, v := range o.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
		}
		return buf.Bytes(), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request body")
		}
		return data, nil
	}
}
