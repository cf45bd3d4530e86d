package github

import (
	"context"
	"net/http"
	"time"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations"
	"github.com/matzehuels/octowire/pkg/observability"
)

// Dispatch sends one request to endpoint (a path such as
// "/repos/octocat/hello-world") and classifies the reply.
//
// On success it returns the Response. On an API-level failure it returns
// both the Response and an *errors.Error describing it; when no response was
// obtained the Response is nil and the error has code CONNECTION_ERROR (or
// GENERIC_ERROR for unexpected transport failures).
func (c *Client) Dispatch(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if err := errors.ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	method := opts.method()
	target, err := opts.resolveURL(c.descriptor.URL(endpoint))
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	for k, v := range c.descriptor.headers {
		header.Set(k, v)
	}
	for k, v := range opts.Headers {
		header.Set(k, v)
	}

	etag := opts.ETag
	if etag == "" && opts.UseStoredETag {
		etag = c.storedETag(ctx, target)
	}
	if etag != "" {
		header.Set("If-None-Match", etag)
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	timeout := c.descriptor.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	start := time.Now()
	raw, err := c.transport.Send(ctx, &integrations.Request{
		Method:  method,
		URL:     target,
		Header:  header,
		Body:    body,
		Timeout: timeout,
	})
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "err", err)
		return nil, transportError(method, endpoint, err)
	}
	if raw == nil {
		return nil, errors.New(errors.ErrCodeGeneric, "%s %s: transport returned no response", method, endpoint)
	}
	c.last.Store(&raw.Header)
	c.logger.Debug("request", "method", method, "url", target, "status", raw.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	resp := &Response{Status: raw.StatusCode, Header: raw.Header, Raw: raw.Body}
	if raw.StatusCode == http.StatusNoContent {
		return resp, nil
	}

	data, err := parsePayload(raw.Header.Get("Content-Type"), raw.Body)
	if err != nil {
		return resp, errors.Wrap(errors.ErrCodeGeneric, err, "decode %s %s response", method, endpoint).
			WithStatus(raw.StatusCode)
	}
	resp.Data = data

	if err := Classify(raw.StatusCode, endpoint, data); err != nil {
		return resp, err
	}

	if method == http.MethodGet {
		if etag := resp.ETag(); etag != "" {
			c.storeETag(ctx, target, etag)
		}
	}
	return resp, nil
}

func transportError(method, endpoint string, err error) error {
	terr, ok := integrations.IsTransportError(err)
	if !ok {
		return errors.Wrap(errors.ErrCodeGeneric, err, "%s %s", method, endpoint)
	}
	code := errors.ErrCodeConnection
	if terr.Kind == integrations.KindUnexpected {
		code = errors.ErrCodeGeneric
	}
	return errors.Wrap(code, terr, "%s %s", method, endpoint)
}

func (c *Client) storedETag(ctx context.Context, target string) string {
	data, hit, err := c.etags.Get(ctx, cache.ETagKey(target))
	if err != nil {
		c.logger.Warn("etag store read failed", "url", target, "err", err)
		return ""
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "etag")
		return ""
	}
	observability.Cache().OnCacheHit(ctx, "etag")
	return string(data)
}

func (c *Client) storeETag(ctx context.Context, target, etag string) {
	if _, ok := c.etags.(cache.NullCache); ok {
		return
	}
	if err := c.etags.Set(ctx, cache.ETagKey(target), []byte(etag), 0); err != nil {
		c.logger.Warn("etag store write failed", "url", target, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "etag", len(etag))
}
