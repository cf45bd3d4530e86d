package github

import (
	"context"
	"fmt"

	"github.com/matzehuels/octowire/pkg/errors"
)

// ReposService covers /repos endpoints.
type ReposService struct {
	client *Client
	events *EventService
}

// Events returns the repository event subscriptions. Names are "owner/repo".
func (s *ReposService) Events() *EventService { return s.events }

// Get fetches a repository by "owner/repo".
func (s *ReposService) Get(ctx context.Context, repo string) (*Repository, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return nil, nil, err
	}
	return call[*Repository](ctx, s.client, path, nil)
}

// Readme returns the raw README of repo at ref (default branch if empty).
func (s *ReposService) Readme(ctx context.Context, repo, ref string) (string, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return "", nil, err
	}
	opts := &RequestOptions{Headers: map[string]string{"Accept": "application/vnd.github.raw"}}
	if ref != "" {
		opts.Params = map[string]string{"ref": ref}
	}
	return textCall(ctx, s.client, path+"/readme", opts)
}

// ListReleases lists releases, newest first.
func (s *ReposService) ListReleases(ctx context.Context, repo string, opts *ListOptions) ([]Release, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return nil, nil, err
	}
	return call[[]Release](ctx, s.client, path+"/releases", &RequestOptions{Params: opts.params()})
}

// LatestRelease returns the most recent non-draft, non-prerelease release.
func (s *ReposService) LatestRelease(ctx context.Context, repo string) (*Release, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return nil, nil, err
	}
	return call[*Release](ctx, s.client, path+"/releases/latest", nil)
}

// ListEvents fetches one page of the repository event feed.
func (s *ReposService) ListEvents(ctx context.Context, repo string, opts *ListOptions) ([]Event, *Response, error) {
	path, err := repoPath(repo)
	if err != nil {
		return nil, nil, err
	}
	return call[[]Event](ctx, s.client, path+"/events", &RequestOptions{Params: opts.params()})
}

func repoPath(ref string) (string, error) {
	owner, name, err := ParseRepoRef(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid repository %q", ref)
	}
	return fmt.Sprintf("/repos/%s/%s", owner, name), nil
}
