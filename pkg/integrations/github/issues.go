package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/matzehuels/octowire/pkg/errors"
)

// IssuesService covers /repos/{owner}/{repo}/issues endpoints.
type IssuesService struct {
	client *Client
}

// IssueListOptions filters List.
type IssueListOptions struct {
	State  string   // "open" (default), "closed" or "all"
	Labels []string // all must match
	ListOptions
}

// Get fetches issue number of repo.
func (s *IssuesService) Get(ctx context.Context, repo string, number int) (*Issue, *Response, error) {
	path, err := issuePath(repo, number)
	if err != nil {
		return nil, nil, err
	}
	return call[*Issue](ctx, s.client, path, nil)
}

// List lists issues of repo. Pull requests are included, as GitHub returns them.
func (s *IssuesService) List(ctx context.Context, repo string, opts *IssueListOptions) ([]Issue, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return nil, nil, err
	}
	req := &RequestOptions{}
	if opts != nil {
		req.Params = opts.ListOptions.params()
		if req.Params == nil {
			req.Params = map[string]string{}
		}
		if opts.State != "" {
			req.Params["state"] = opts.State
		}
		if len(opts.Labels) > 0 {
			req.Params["labels"] = strings.Join(opts.Labels, ",")
		}
	}
	return call[[]Issue](ctx, s.client, path+"/issues", req)
}

// Lock locks the conversation. reason is one of "off-topic", "too heated",
// "resolved", "spam" or empty. GitHub replies 204; resp.Data is nil.
func (s *IssuesService) Lock(ctx context.Context, repo string, number int, reason string) (*Response, error) {
	path, err := issuePath(repo, number)
	if err != nil {
		return nil, err
	}
	opts := &RequestOptions{Method: http.MethodPut}
	if reason != "" {
		opts.Body = map[string]string{"lock_reason": reason}
	}
	return s.client.Dispatch(ctx, path+"/lock", opts)
}

// Unlock unlocks the conversation.
func (s *IssuesService) Unlock(ctx context.Context, repo string, number int) (*Response, error) {
	path, err := issuePath(repo, number)
	if err != nil {
		return nil, err
	}
	return s.client.Dispatch(ctx, path+"/lock", &RequestOptions{Method: http.MethodDelete})
}

func issuePath(repo string, number int) (string, error) {
	path, err := repoPath(repo)
	if err != nil {
		return "", err
	}
	if number <= 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid issue number %d", number)
	}
	return fmt.Sprintf("%s/issues/%d", path, number), nil
}
