package github

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/matzehuels/octowire/pkg/buildinfo"
	"github.com/matzehuels/octowire/pkg/errors"
)

// DefaultClientID is the OAuth App client ID of octowire. Client IDs are
// public; the device flow needs no secret. Override with GITHUB_CLIENT_ID.
const DefaultClientID = "Ov23liyPM58WU6hMeP7E"

const (
	deviceCodePath  = "/login/device/code"
	accessTokenPath = "/login/oauth/access_token"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	slowDownStep = 5 * time.Second
)

// DeviceFlow runs the OAuth device authorization flow:
//
//	flow := github.NewDeviceFlow(github.DefaultClientID)
//	code, err := flow.Register(ctx, "repo read:user")
//	fmt.Printf("Open %s and enter %s\n", code.VerificationURI, code.UserCode)
//	token, err := flow.Activate(ctx, code.DeviceCode)
//
// Requests go through the regular pipeline against https://github.com.
type DeviceFlow struct {
	client   *Client
	clientID string

	mu       sync.Mutex
	interval time.Duration
	expires  time.Time
}

// NewDeviceFlow creates a device flow for the OAuth app clientID. opts
// configure the underlying Client; the base URL defaults to OAuthBaseURL.
func NewDeviceFlow(clientID string, opts ...Option) *DeviceFlow {
	opts = append([]Option{WithBaseURL(OAuthBaseURL), WithClientName(buildinfo.UserAgent())}, opts...)
	return &DeviceFlow{
		client:   New(opts...),
		clientID: clientID,
		interval: 5 * time.Second,
	}
}

// Register requests a device and user code for scope.
func (f *DeviceFlow) Register(ctx context.Context, scope string) (*DeviceCode, error) {
	code, _, err := call[*DeviceCode](ctx, f.client, deviceCodePath, &RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"Accept": "application/json"},
		Body:    map[string]string{"client_id": f.clientID, "scope": scope},
	})
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if code.Interval > 0 {
		f.interval = time.Duration(code.Interval) * time.Second
	}
	f.expires = f.client.clock.Now().Add(time.Duration(code.ExpiresIn) * time.Second)
	f.mu.Unlock()

	f.client.logger.Debug("device registered", "user_code", code.UserCode, "expires_in", code.ExpiresIn)
	return code, nil
}

type accessTokenReply struct {
	OAuthToken
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Activate polls until the user enters the code, the code expires or ctx
// ends. It must follow Register.
func (f *DeviceFlow) Activate(ctx context.Context, deviceCode string) (*OAuthToken, error) {
	f.mu.Lock()
	expires, interval := f.expires, f.interval
	f.mu.Unlock()

	if expires.IsZero() {
		return nil, errors.New(errors.ErrCodeGeneric, "Expiration has passed, re-run the registration")
	}

	for {
		if f.client.clock.Now().After(expires) {
			return nil, errors.New(errors.ErrCodeGeneric, "User took too long to enter key")
		}

		reply, _, err := call[*accessTokenReply](ctx, f.client, accessTokenPath, &RequestOptions{
			Method:  http.MethodPost,
			Headers: map[string]string{"Accept": "application/json"},
			Body: map[string]string{
				"client_id":   f.clientID,
				"device_code": deviceCode,
				"grant_type":  deviceGrantType,
			},
		})
		if err != nil {
			return nil, err
		}

		switch reply.Error {
		case "":
			token := reply.OAuthToken
			return &token, nil
		case "authorization_pending":
			f.client.logger.Debug("waiting for user", "description", reply.ErrorDescription)
		case "slow_down":
			interval += slowDownStep
			f.client.logger.Debug("slowing down", "interval", interval)
		default:
			return nil, errors.New(errors.ErrCodeGeneric, "%s", reply.ErrorDescription).WithStatus(http.StatusOK)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeConnection, ctx.Err(), "device activation cancelled")
		case <-f.client.clock.After(interval):
		}
	}
}

// Close releases the flow's transport connections.
func (f *DeviceFlow) Close(ctx context.Context) error {
	return f.client.Close(ctx)
}
