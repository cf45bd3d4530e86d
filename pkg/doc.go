// Package pkg holds the octowire libraries.
//
// # Overview
//
// Octowire is a GitHub REST and GraphQL client. The pkg directory is split
// by concern:
//
//  1. [integrations] - The HTTP transport and the [integrations/github] client
//  2. [cache] - ETag stores for conditional requests (file, Redis, none)
//  3. [session] - Device-flow credentials in the keyring or on disk
//  4. [archive] - Optional MongoDB sink for watched events
//  5. [config], [errors], [observability] - Shared plumbing
//
// # Request flow
//
//	Client.Dispatch
//	     ↓
//	RequestDescriptor (URL, headers, body)
//	     ↓
//	integrations.Client (pacing, bounded reads)
//	     ↓
//	ErrorClassifier → Response / coded error
//
// # Quick Start
//
//	client := github.New(github.WithToken(os.Getenv("GITHUB_TOKEN")))
//	defer client.Close(context.Background())
//
//	repo, _, err := client.Repos().Get(ctx, "cli/cli")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(repo.FullName, repo.Stars)
//
// Watch an activity feed:
//
//	events := client.Repos().Events()
//	id, err := events.Subscribe(ctx, "cli/cli", func(ctx context.Context, ev github.Event) error {
//	    fmt.Println(ev.Type, ev.Actor.Login)
//	    return nil
//	}, nil, nil)
//
// See the individual package documentation for details.
package pkg
