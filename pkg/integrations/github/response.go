package github

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/octowire/pkg/errors"
)

// Response wraps a completed request.
//
// Data holds the parsed payload: decoded JSON (map[string]any, []any, ...)
// for JSON responses, []byte for archives, string for anything else and nil
// for 204 No Content. Typed service methods replace Data with their decoded
// model before returning. Raw always holds the body bytes.
type Response struct {
	Status int
	Header http.Header
	Data   any
	Raw    []byte
}

// ETag returns the response validator, or "".
func (r *Response) ETag() string {
	return r.Header.Get("ETag")
}

// Decode unmarshals the raw JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Raw) == 0 {
		return errors.New(errors.ErrCodeGeneric, "response has no body")
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return errors.Wrap(errors.ErrCodeGeneric, err, "decode response")
	}
	return nil
}

// PollInterval returns the X-Poll-Interval hint, if present and valid.
func (r *Response) PollInterval() (time.Duration, bool) {
	v := r.Header.Get("X-Poll-Interval")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// Pages maps each rel of the Link header ("next", "prev", "last", "first")
// to the page query parameter of its URL. Entries without a numeric page
// are omitted.
func (r *Response) Pages() map[string]int {
	return parseLinkPages(r.Header.Get("Link"))
}

// PageNumber is 1 without a Link header or prev link, else prev+1.
func (r *Response) PageNumber() int {
	if r.Header.Get("Link") == "" {
		return 1
	}
	if prev, ok := r.Pages()["prev"]; ok {
		return prev + 1
	}
	return 1
}

// NextPageNumber returns the page of the next link.
func (r *Response) NextPageNumber() (int, bool) {
	n, ok := r.Pages()["next"]
	return n, ok
}

// LastPageNumber returns the page of the last link.
func (r *Response) LastPageNumber() (int, bool) {
	n, ok := r.Pages()["last"]
	return n, ok
}

// IsLastPage is true without a Link header, or when the current page is the
// last one. A Link header without a last link counts as the last page.
func (r *Response) IsLastPage() bool {
	if r.Header.Get("Link") == "" {
		return true
	}
	last, ok := r.LastPageNumber()
	if !ok {
		return true
	}
	return r.PageNumber() == last
}

// RateLimit parses the X-RateLimit-* headers of this response.
func (r *Response) RateLimit() RateLimit {
	return parseRateLimit(r.Header)
}

// parseLinkPages parses an RFC 5988 Link header:
//
//	<https://api.github.com/x?page=3>; rel="next", <https://api.github.com/x?page=5>; rel="last"
func parseLinkPages(header string) map[string]int {
	pages := make(map[string]int)
	if header == "" {
		return pages
	}
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		u, err := url.Parse(target[1 : len(target)-1])
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}
		for _, param := range segments[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "rel" {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(value, `"`)) {
				pages[rel] = page
			}
		}
	}
	return pages
}

// RateLimit is the quota state reported by one response.
type RateLimit struct {
	Limit     int
	Remaining int
	Used      int
	Reset     time.Time
	Resource  string
}

// Known reports whether the response carried rate limit headers.
func (rl RateLimit) Known() bool {
	return rl.Limit > 0 || !rl.Reset.IsZero()
}

func parseRateLimit(h http.Header) RateLimit {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(h.Get(key))
		return n
	}
	rl := RateLimit{
		Limit:     atoi("X-RateLimit-Limit"),
		Remaining: atoi("X-RateLimit-Remaining"),
		Used:      atoi("X-RateLimit-Used"),
		Resource:  h.Get("X-RateLimit-Resource"),
	}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	return rl
}

type payloadKind int

const (
	payloadJSON payloadKind = iota
	payloadBinary
	payloadText
)

func classifyContentType(contentType string) payloadKind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return payloadJSON
	case mediaType == "application/zip",
		mediaType == "application/x-zip-compressed",
		mediaType == "application/gzip",
		mediaType == "application/x-gzip",
		mediaType == "application/octet-stream":
		return payloadBinary
	default:
		return payloadText
	}
}

// parsePayload converts a body according to its Content-Type.
func parsePayload(contentType string, body []byte) (any, error) {
	switch classifyContentType(contentType) {
	case payloadJSON:
		if len(body) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case payloadBinary:
		return body, nil
	default:
		return string(body), nil
	}
}
