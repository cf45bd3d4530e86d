package github

import (
	"context"
	"strconv"
)

// ListOptions selects a page of a list endpoint.
type ListOptions struct {
	Page    int
	PerPage int
}

func (o *ListOptions) params() map[string]string {
	if o == nil {
		return nil
	}
	p := make(map[string]string, 2)
	if o.Page > 0 {
		p["page"] = strconv.Itoa(o.Page)
	}
	if o.PerPage > 0 {
		p["per_page"] = strconv.Itoa(o.PerPage)
	}
	return p
}

// PageFunc fetches one page of a list endpoint.
type PageFunc[T any] func(ctx context.Context, opts *ListOptions) ([]T, *Response, error)

// PageIterator walks a list endpoint using the Link header of each reply.
// It is not safe for concurrent use.
type PageIterator[T any] struct {
	fetch   PageFunc[T]
	perPage int
	next    int
	done    bool
	last    *Response
}

// Pages returns an iterator starting at page 1. perPage <= 0 leaves the
// server default.
//
//	it := github.Pages(func(ctx context.Context, o *github.ListOptions) ([]github.Release, *github.Response, error) {
//	    return client.Repos().ListReleases(ctx, "octocat/hello-world", o)
//	}, 100)
//	releases, err := it.Collect(ctx)
func Pages[T any](fetch PageFunc[T], perPage int) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch, perPage: perPage, next: 1}
}

// Next fetches the next page. It returns nil, nil once all pages are consumed.
func (it *PageIterator[T]) Next(ctx context.Context) ([]T, error) {
	if it.done {
		return nil, nil
	}
	items, resp, err := it.fetch(ctx, &ListOptions{Page: it.next, PerPage: it.perPage})
	if err != nil {
		return nil, err
	}
	it.last = resp
	next, ok := resp.NextPageNumber()
	if !ok || resp.IsLastPage() || next <= it.next {
		it.done = true
	} else {
		it.next = next
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Collect fetches all remaining pages and returns the items concatenated.
func (it *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for {
		items, err := it.Next(ctx)
		if err != nil {
			return all, err
		}
		if items == nil {
			return all, nil
		}
		all = append(all, items...)
	}
}

// Response returns the reply of the most recent page.
func (it *PageIterator[T]) Response() *Response { return it.last }
