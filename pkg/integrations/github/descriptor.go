package github

import (
	"maps"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/octowire/pkg/buildinfo"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// OAuthBaseURL hosts the device flow endpoints.
	OAuthBaseURL = "https://github.com"

	// DefaultTimeout applies to every request that does not set its own.
	DefaultTimeout = 20 * time.Second

	// MediaTypeV3 is the default Accept header.
	MediaTypeV3 = "application/vnd.github.v3+json"
)

// Descriptor holds the parts of every request that are fixed for the
// lifetime of a Client. It is immutable once built.
type Descriptor struct {
	baseURL string
	headers map[string]string
	token   string
	timeout time.Duration
}

func newDescriptor(o *options, logger *log.Logger) Descriptor {
	headers := map[string]string{
		"Accept":       MediaTypeV3,
		"Content-Type": "application/json",
		"User-Agent":   buildinfo.UserAgent(),
	}
	if o.token != "" {
		headers["Authorization"] = "token " + o.token
	}
	if o.apiVersion != "" {
		headers["X-GitHub-Api-Version"] = o.apiVersion
	}
	customAgent := false
	for k, v := range o.headers {
		key := http.CanonicalHeaderKey(k)
		headers[key] = v
		if key == "User-Agent" {
			customAgent = true
		}
	}
	if o.clientName != "" {
		headers["User-Agent"] = o.clientName
		customAgent = true
	}
	if o.token == "" && !customAgent {
		logger.Warn("no token or client name configured; set one so GitHub can attribute your requests",
			"user_agent", headers["User-Agent"])
	}

	return Descriptor{
		baseURL: o.baseURL,
		headers: headers,
		token:   o.token,
		timeout: o.timeout,
	}
}

// URL joins the base URL and endpoint.
func (d Descriptor) URL(endpoint string) string {
	return d.baseURL + endpoint
}

// Headers returns a copy of the default headers.
func (d Descriptor) Headers() map[string]string {
	return maps.Clone(d.headers)
}

func (d Descriptor) BaseURL() string        { return d.baseURL }
func (d Descriptor) Timeout() time.Duration { return d.timeout }

// Authenticated reports whether a token is configured.
func (d Descriptor) Authenticated() bool { return d.token != "" }
