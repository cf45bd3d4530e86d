// Package github is an asynchronous client for the GitHub REST and GraphQL
// APIs.
//
// # Overview
//
// Every call, whether made through a typed service or directly, passes
// through [Client.Dispatch]:
//
//  1. the endpoint is joined to the base URL and query parameters are added
//  2. default headers are merged with per-call headers (per-call wins)
//  3. an ETag, if given, is sent as If-None-Match
//  4. the body is sent raw ([]byte, string, io.Reader) or as JSON
//  5. the reply is parsed by Content-Type (JSON, archive bytes or text)
//  6. [Classify] maps status and payload to an error code
//
// # Usage
//
//	client := github.New(
//	    github.WithToken(os.Getenv("GITHUB_TOKEN")),
//	    github.WithClientName("my-tool/1.0"),
//	)
//	defer client.Close(context.Background())
//
//	repo, resp, err := client.Repos().Get(ctx, "octocat/hello-world")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(repo.Stars, resp.RateLimit().Remaining)
//
// # Errors
//
// Failures are *errors.Error values from pkg/errors with one code of a
// closed set. A 304 reply to a conditional request is NOT_MODIFIED, which
// callers should treat as "no new data".
//
// # Pagination
//
// [Response] exposes the Link header as page numbers ([Response.PageNumber],
// [Response.NextPageNumber], [Response.IsLastPage]). [Pages] turns any list
// method into an iterator.
//
// # Event Subscriptions
//
// [EventService.Subscribe] long-polls an events feed with conditional
// requests. Each subscription runs in its own goroutine, honours the
// server's X-Poll-Interval, backs off for five minutes after transient
// errors and ends on authentication, not-found or permission errors:
//
//	id, err := client.Repos().Events().Subscribe(ctx, "octocat/hello-world",
//	    func(ctx context.Context, ev github.Event) error {
//	        fmt.Println(ev.Type, ev.Actor.Login)
//	        return nil
//	    },
//	    func(ctx context.Context, err error) { log.Print(err) },
//	    nil,
//	)
//	defer client.Repos().Events().Unsubscribe(id)
//
// # Device Flow
//
// [DeviceFlow] obtains a user token without a client secret. See
// [NewDeviceFlow].
package github
