package github

import (
	"context"

	"github.com/matzehuels/octowire/pkg/errors"
)

// UsersService covers /users endpoints.
type UsersService struct {
	client *Client
	events *EventService
}

// Events returns the user event subscriptions. Names are logins.
func (s *UsersService) Events() *EventService { return s.events }

// Get fetches a user by login.
func (s *UsersService) Get(ctx context.Context, username string) (*User, *Response, error) {
	if err := validateAccount(username); err != nil {
		return nil, nil, err
	}
	return call[*User](ctx, s.client, "/users/"+username, nil)
}

// Repos lists the public repositories of a user.
func (s *UsersService) Repos(ctx context.Context, username string, opts *ListOptions) ([]Repository, *Response, error) {
	if err := validateAccount(username); err != nil {
		return nil, nil, err
	}
	return call[[]Repository](ctx, s.client, "/users/"+username+"/repos", &RequestOptions{Params: opts.params()})
}

// OrgsService covers /orgs endpoints.
type OrgsService struct {
	client *Client
	events *EventService
}

// Events returns the organization event subscriptions. Names are org logins.
func (s *OrgsService) Events() *EventService { return s.events }

// Get fetches an organization.
func (s *OrgsService) Get(ctx context.Context, org string) (*Organization, *Response, error) {
	if err := validateAccount(org); err != nil {
		return nil, nil, err
	}
	return call[*Organization](ctx, s.client, "/orgs/"+org, nil)
}

// Repos lists the repositories of an organization visible to the caller.
func (s *OrgsService) Repos(ctx context.Context, org string, opts *ListOptions) ([]Repository, *Response, error) {
	if err := validateAccount(org); err != nil {
		return nil, nil, err
	}
	return call[[]Repository](ctx, s.client, "/orgs/"+org+"/repos", &RequestOptions{Params: opts.params()})
}

// UserService covers /user, the authenticated user. All calls need a token.
type UserService struct {
	client *Client
}

// Get returns the authenticated user.
func (s *UserService) Get(ctx context.Context) (*User, *Response, error) {
	return call[*User](ctx, s.client, "/user", nil)
}

// Repos lists repositories the authenticated user can access.
func (s *UserService) Repos(ctx context.Context, opts *ListOptions) ([]Repository, *Response, error) {
	return call[[]Repository](ctx, s.client, "/user/repos", &RequestOptions{Params: opts.params()})
}

// Starred lists repositories starred by the authenticated user.
func (s *UserService) Starred(ctx context.Context, opts *ListOptions) ([]Repository, *Response, error) {
	return call[[]Repository](ctx, s.client, "/user/starred", &RequestOptions{Params: opts.params()})
}

func validateAccount(name string) error {
	if err := ValidateOwner(name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid account %q", name)
	}
	return nil
}
